package cmd

import (
	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/config"
	"github.com/piontas/cfndeployer/deployer"
	"github.com/piontas/cfndeployer/logger"
)

var (
	RootCmd = &cobra.Command{
		Use:   "cfndeployer",
		Short: "Deploy CloudFormation stacks",
		Long:  ``,
	}

	configPath  = "cfndeployer.yaml"
	environment = ""
)

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", configPath, "Location of the cfndeployer config file")
	RootCmd.PersistentFlags().StringVar(&environment, "environment", "", "Config environment overlay to deploy with")
	RootCmd.PersistentFlags().BoolVar(&logger.Silent, "silent", false, "Do not output any log messages")
	RootCmd.PersistentFlags().BoolVar(&logger.Verbose, "verbose", false, "Enable verbose output")
	RootCmd.PersistentFlags().BoolVar(&logger.Color, "color", false, "Colorize log output")
}

func loadDeployer(awsDebug bool) (*deployer.Deployer, error) {
	cfg, err := config.ConfigFromFile(configPath, environment)
	if err != nil {
		return nil, err
	}
	return deployer.New(cfg, awsDebug)
}
