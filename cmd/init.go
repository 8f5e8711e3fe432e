package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/builtin"
	"github.com/piontas/cfndeployer/config"
	"github.com/piontas/cfndeployer/filegen"
	"github.com/piontas/cfndeployer/logger"
)

var (
	cmdInit = &cobra.Command{
		Use:          "init",
		Short:        "Initialize a stack config and starter template",
		Long:         ``,
		RunE:         runCmdInit,
		SilenceUsage: true,
	}

	initOpts = config.InitialConfig{}
)

func init() {
	RootCmd.AddCommand(cmdInit)
	cmdInit.Flags().StringVar(&initOpts.StackName, "stack-name", "", "The name of the CloudFormation stack")
	cmdInit.Flags().StringVar(&initOpts.Region.Name, "region", "", "The AWS region to deploy to")
	cmdInit.Flags().StringVar(&initOpts.S3URI, "s3-uri", "", "The S3 location (s3://mybucket/mydir) used for oversized templates and packaging")
}

func runCmdInit(_ *cobra.Command, _ []string) error {
	if err := validateRequired(
		flag{"--stack-name", initOpts.StackName},
		flag{"--region", initOpts.Region.Name},
	); err != nil {
		return err
	}

	if err := filegen.CreateFileFromTemplate(configPath, initOpts, builtin.Bytes(builtin.DeployerConfigFile)); err != nil {
		return fmt.Errorf("Error exec-ing default config template: %v", err)
	}

	if err := filegen.Render(
		filegen.File("stack-templates/vpc.json", builtin.Bytes(builtin.VPCStackTemplateFile), 0644),
	); err != nil {
		return fmt.Errorf("Error writing starter template: %v", err)
	}

	successMsg :=
		`Success! Created %s and stack-templates/vpc.json

Next steps:
1. Edit %s to configure parameters and tags for your stack.
2. Replace stack-templates/vpc.json with your own template, or keep it to provision a VPC.
3. Use the "cfndeployer validate" command to check the template, then "cfndeployer deploy".
`

	logger.Infof(successMsg, configPath, configPath)
	return nil
}
