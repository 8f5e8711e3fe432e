package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/deployer"
	"github.com/piontas/cfndeployer/logger"
)

var (
	cmdCost = &cobra.Command{
		Use:          "estimate-cost",
		Short:        "Estimate the cost of the stack's resources",
		Long:         ``,
		RunE:         runCmdCost,
		SilenceUsage: true,
	}

	costOpts = struct {
		awsDebug bool
	}{}
)

func init() {
	RootCmd.AddCommand(cmdCost)
	cmdCost.Flags().BoolVar(&costOpts.awsDebug, "aws-debug", false, "Log debug information from aws-sdk-go library")
}

func runCmdCost(_ *cobra.Command, _ []string) error {
	d, err := loadDeployer(costOpts.awsDebug)
	if err != nil {
		return fmt.Errorf("Failed to read stack config: %v", err)
	}

	body, err := d.RenderTemplate(deployer.RenderOptions{})
	if err != nil {
		return fmt.Errorf("Failed to render stack template: %v", err)
	}

	urls, err := d.EstimateCost(body)
	if err != nil {
		return fmt.Errorf("Failed to estimate cost: %v", err)
	}

	logger.Info("Cost estimates:")
	for _, url := range urls {
		logger.Infof("  %s", url)
	}
	return nil
}
