package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/logger"
)

var (
	cmdDestroy = &cobra.Command{
		Use:          "destroy",
		Short:        "Destroy an existing stack",
		Long:         ``,
		RunE:         runCmdDestroy,
		SilenceUsage: true,
	}
	destroyOpts = struct {
		awsDebug bool
	}{}
)

func init() {
	RootCmd.AddCommand(cmdDestroy)
	cmdDestroy.Flags().BoolVar(&destroyOpts.awsDebug, "aws-debug", false, "Log debug information from aws-sdk-go library")
}

func runCmdDestroy(_ *cobra.Command, _ []string) error {
	d, err := loadDeployer(destroyOpts.awsDebug)
	if err != nil {
		return fmt.Errorf("Error parsing config: %v", err)
	}

	logger.Info("Destroying stack. This may take several minutes.")
	if err := d.Destroy(); err != nil {
		return fmt.Errorf("Failed destroying stack: %v", err)
	}

	logger.Infof("CloudFormation stack %s has been destroyed", d.Config().StackName)
	return nil
}
