package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/awsconn"
	"github.com/piontas/cfndeployer/cfnstack"
	"github.com/piontas/cfndeployer/config"
	"github.com/piontas/cfndeployer/packager"
	"github.com/piontas/cfndeployer/s3uploader"
)

var (
	cmdPackage = &cobra.Command{
		Use:          "package",
		Short:        "Upload referenced templates to S3 and export the packaged template",
		Long:         ``,
		RunE:         runCmdPackage,
		SilenceUsage: true,
	}

	packageOpts = struct {
		awsDebug, useJSON, forceUpload bool
		outputFile                     string
	}{}
)

func init() {
	RootCmd.AddCommand(cmdPackage)
	cmdPackage.Flags().StringVar(&packageOpts.outputFile, "output-file", "template.package", "Where to write the packaged template")
	cmdPackage.Flags().BoolVar(&packageOpts.useJSON, "use-json", false, "Write the packaged template as JSON instead of YAML")
	cmdPackage.Flags().BoolVar(&packageOpts.forceUpload, "force-upload", false, "Upload artifacts even when identical objects already exist")
	cmdPackage.Flags().BoolVar(&packageOpts.awsDebug, "aws-debug", false, "Log debug information from aws-sdk-go library")
}

func runCmdPackage(_ *cobra.Command, _ []string) error {
	cfg, err := config.ConfigFromFile(configPath, environment)
	if err != nil {
		return fmt.Errorf("Unable to load stack config: %v", err)
	}

	if cfg.S3URI == "" {
		return fmt.Errorf("s3URI must be configured to package templates")
	}
	uri, err := cfnstack.S3URIFromString(cfg.S3URI)
	if err != nil {
		return err
	}

	sess, err := awsconn.NewSessionFromRegion(cfg.Region, packageOpts.awsDebug)
	if err != nil {
		return err
	}

	prefix := cfg.StackName
	if components := uri.KeyComponents(); len(components) > 0 {
		prefix = fmt.Sprintf("%s/%s", components[0], cfg.StackName)
	}

	uploader := s3uploader.New(s3.New(sess), uri.Bucket(), cfg.Region, prefix, cfg.KMSKeyARN, packageOpts.forceUpload)
	p := packager.New(uploader, filepath.Dir(cfg.TemplateFile))

	return p.Package(cfg.TemplateFile, packageOpts.outputFile, packageOpts.useJSON)
}
