package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/deployer"
	"github.com/piontas/cfndeployer/logger"
)

var (
	cmdValidate = &cobra.Command{
		Use:          "validate",
		Short:        "Validate the stack template",
		Long:         ``,
		RunE:         runCmdValidate,
		SilenceUsage: true,
	}

	validateOpts = struct {
		awsDebug bool
	}{}
)

func init() {
	RootCmd.AddCommand(cmdValidate)
	cmdValidate.Flags().BoolVar(&validateOpts.awsDebug, "aws-debug", false, "Log debug information from aws-sdk-go library")
}

func runCmdValidate(_ *cobra.Command, _ []string) error {
	d, err := loadDeployer(validateOpts.awsDebug)
	if err != nil {
		return fmt.Errorf("Unable to load stack config: %v", err)
	}

	logger.Info("Validating stack template...")
	body, err := d.RenderTemplate(deployer.RenderOptions{})
	if err != nil {
		return fmt.Errorf("Failed to render stack template: %v", err)
	}

	report, err := d.ValidateTemplate(body)
	if report != "" {
		logger.Debugf("Validation Report: %s", report)
	}
	if err != nil {
		return err
	}

	logger.Info("Validation OK!")
	return nil
}
