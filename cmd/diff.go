package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/cfnstack"
	"github.com/piontas/cfndeployer/deployer"
	"github.com/piontas/cfndeployer/logger"
)

var (
	cmdDiff = &cobra.Command{
		Use:          "diff",
		Short:        "Compare the local template against the deployed stack",
		Long:         ``,
		RunE:         runCmdDiff,
		SilenceUsage: true,
	}

	diffOpts = struct {
		awsDebug bool
		context  int
	}{}
)

func init() {
	RootCmd.AddCommand(cmdDiff)
	cmdDiff.Flags().IntVarP(&diffOpts.context, "context", "C", -1, "Number of unchanged lines shown around changes (-1 for everything)")
	cmdDiff.Flags().BoolVar(&diffOpts.awsDebug, "aws-debug", false, "Log debug information from aws-sdk-go library")
}

func runCmdDiff(_ *cobra.Command, _ []string) error {
	d, err := loadDeployer(diffOpts.awsDebug)
	if err != nil {
		return fmt.Errorf("Failed to read stack config: %v", err)
	}

	body, err := d.RenderTemplate(deployer.RenderOptions{})
	if err != nil {
		return fmt.Errorf("Failed to render stack template: %v", err)
	}

	diff, err := d.Diff(body, diffOpts.context)
	if err != nil {
		if cfnstack.IsStackNotFound(err) {
			logger.Infof("Stack %s is not deployed yet, nothing to diff against", d.Config().StackName)
			return nil
		}
		return fmt.Errorf("Failed diffing stack: %v", err)
	}

	fmt.Print(diff)
	return nil
}
