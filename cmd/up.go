package cmd

import (
	"fmt"
	"io/ioutil"

	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/deployer"
	"github.com/piontas/cfndeployer/logger"
)

var (
	cmdUp = &cobra.Command{
		Use:          "up",
		Short:        "Create a new stack",
		Long:         ``,
		RunE:         runCmdUp,
		SilenceUsage: true,
	}

	upOpts = struct {
		awsDebug, export, prettyPrint bool
	}{}
)

func init() {
	RootCmd.AddCommand(cmdUp)
	cmdUp.Flags().BoolVar(&upOpts.export, "export", false, "Don't create the stack, instead export the rendered template")
	cmdUp.Flags().BoolVar(&upOpts.prettyPrint, "pretty-print", false, "Pretty print the resulting CloudFormation")
	cmdUp.Flags().BoolVar(&upOpts.awsDebug, "aws-debug", false, "Log debug information from aws-sdk-go library")
}

func runCmdUp(_ *cobra.Command, _ []string) error {
	d, err := loadDeployer(upOpts.awsDebug)
	if err != nil {
		return fmt.Errorf("Failed to read stack config: %v", err)
	}

	body, err := d.RenderTemplate(deployer.RenderOptions{PrettyPrint: upOpts.prettyPrint})
	if err != nil {
		return fmt.Errorf("Failed to render stack template: %v", err)
	}

	if upOpts.export {
		templatePath := fmt.Sprintf("%s.stack.json", d.Config().StackName)
		logger.Infof("Exporting %s", templatePath)
		if err := ioutil.WriteFile(templatePath, []byte(body), 0600); err != nil {
			return fmt.Errorf("Error writing %s : %v", templatePath, err)
		}
		return nil
	}

	logger.Info("Creating stack. This may take several minutes.")
	if err := d.Create(body); err != nil {
		return fmt.Errorf("Error creating stack: %v", err)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("Failed fetching stack info: %v", err)
	}

	logger.Info("Success! Your AWS resources have been created:")
	logger.Info(info.String())
	return nil
}
