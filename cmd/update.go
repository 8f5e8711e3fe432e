package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/cfnstack"
	"github.com/piontas/cfndeployer/deployer"
	"github.com/piontas/cfndeployer/logger"
)

var (
	cmdUpdate = &cobra.Command{
		Use:          "update",
		Short:        "Update an existing stack",
		Long:         ``,
		RunE:         runCmdUpdate,
		SilenceUsage: true,
	}

	updateOpts = struct {
		awsDebug, prettyPrint bool
	}{}
)

func init() {
	RootCmd.AddCommand(cmdUpdate)
	cmdUpdate.Flags().BoolVar(&updateOpts.prettyPrint, "pretty-print", false, "Pretty print the resulting CloudFormation")
	cmdUpdate.Flags().BoolVar(&updateOpts.awsDebug, "aws-debug", false, "Log debug information from aws-sdk-go library")
}

func runCmdUpdate(_ *cobra.Command, _ []string) error {
	d, err := loadDeployer(updateOpts.awsDebug)
	if err != nil {
		return fmt.Errorf("Failed to read stack config: %v", err)
	}

	body, err := d.RenderTemplate(deployer.RenderOptions{PrettyPrint: updateOpts.prettyPrint})
	if err != nil {
		return fmt.Errorf("Failed to render stack template: %v", err)
	}

	logger.Info("Updating stack. This may take several minutes.")
	report, err := d.Update(body)
	if err != nil {
		if cfnstack.IsEmptyChangeSet(err) {
			logger.Infof("No changes to update. Stack %s is up to date", d.Config().StackName)
			return nil
		}
		return fmt.Errorf("Error updating stack: %v", err)
	}
	if report != "" {
		logger.Infof("Update stack: %s", report)
	}
	return nil
}
