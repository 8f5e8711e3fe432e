package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cmdStatus = &cobra.Command{
		Use:          "status",
		Short:        "Describe the deployed stack",
		Long:         ``,
		RunE:         runCmdStatus,
		SilenceUsage: true,
	}

	statusOpts = struct {
		awsDebug bool
	}{}
)

func init() {
	RootCmd.AddCommand(cmdStatus)
	cmdStatus.Flags().BoolVar(&statusOpts.awsDebug, "aws-debug", false, "Log debug information from aws-sdk-go library")
}

func runCmdStatus(_ *cobra.Command, _ []string) error {
	d, err := loadDeployer(statusOpts.awsDebug)
	if err != nil {
		return fmt.Errorf("Failed to read stack config: %v", err)
	}

	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("Failed fetching stack info: %v", err)
	}

	fmt.Print(info.String())
	return nil
}
