package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/cfnstack"
	"github.com/piontas/cfndeployer/deployer"
	"github.com/piontas/cfndeployer/logger"
)

var (
	cmdDeploy = &cobra.Command{
		Use:          "deploy",
		Short:        "Create or update the stack via a change set",
		Long:         ``,
		RunE:         runCmdDeploy,
		SilenceUsage: true,
	}

	deployOpts = struct {
		awsDebug, prettyPrint, noExecute, force bool
		sets                                    []string
	}{}
)

func init() {
	RootCmd.AddCommand(cmdDeploy)
	cmdDeploy.Flags().BoolVar(&deployOpts.noExecute, "no-execute", false, "Create the change set but don't execute it")
	cmdDeploy.Flags().BoolVar(&deployOpts.force, "force", false, "Don't ask for confirmation")
	cmdDeploy.Flags().BoolVar(&deployOpts.prettyPrint, "pretty-print", false, "Pretty print the resulting CloudFormation")
	cmdDeploy.Flags().StringSliceVar(&deployOpts.sets, "set", []string{}, "Override a value in the rendered template, e.g. Parameters.VpcName.Default=prod-vpc")
	cmdDeploy.Flags().BoolVar(&deployOpts.awsDebug, "aws-debug", false, "Log debug information from aws-sdk-go library")
}

func runCmdDeploy(_ *cobra.Command, _ []string) error {
	if !deployOpts.force && !deployConfirmation() {
		logger.Info("Operation cancelled")
		return nil
	}

	d, err := loadDeployer(deployOpts.awsDebug)
	if err != nil {
		return fmt.Errorf("Failed to read stack config: %v", err)
	}

	body, err := d.RenderTemplate(deployer.RenderOptions{
		PrettyPrint: deployOpts.prettyPrint,
		Sets:        deployOpts.sets,
	})
	if err != nil {
		return fmt.Errorf("Failed to render stack template: %v", err)
	}

	logger.Info("Deploying CloudFormation stack...")
	cs, err := d.Deploy(body, !deployOpts.noExecute)
	if err != nil {
		if cfnstack.IsEmptyChangeSet(err) {
			logger.Infof("No changes to deploy. Stack %s is up to date", d.Config().StackName)
			return nil
		}
		return fmt.Errorf("Error deploying stack: %v", err)
	}

	if deployOpts.noExecute {
		logger.Infof("Change set %s created. Review it in the AWS console or execute it with another deploy run", cs.Name)
		return nil
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("Failed fetching stack info: %v", err)
	}

	logger.Info("Success! The stack has been deployed:")
	logger.Info(info.String())
	return nil
}

func deployConfirmation() bool {
	fmt.Print("This operation will create/update the stack. Are you sure? [y,n]: ")

	reader := bufio.NewReader(os.Stdin)
	text, _ := reader.ReadString('\n')
	text = strings.ToLower(strings.TrimSpace(text))

	return text == "y" || text == "yes"
}
