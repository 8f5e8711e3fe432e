package cmd

import (
	"fmt"
	"io/ioutil"

	"github.com/spf13/cobra"

	"github.com/piontas/cfndeployer/deployer"
)

var (
	cmdRender = &cobra.Command{
		Use:          "render",
		Short:        "Render the stack template",
		Long:         ``,
		RunE:         runCmdRender,
		SilenceUsage: true,
	}

	renderOpts = struct {
		prettyPrint bool
		output      string
		sets        []string
	}{}
)

func init() {
	RootCmd.AddCommand(cmdRender)
	cmdRender.Flags().BoolVar(&renderOpts.prettyPrint, "pretty-print", true, "Pretty print the resulting CloudFormation")
	cmdRender.Flags().StringVar(&renderOpts.output, "output", "", "Write the rendered template to a file instead of stdout")
	cmdRender.Flags().StringSliceVar(&renderOpts.sets, "set", []string{}, "Override a value in the rendered template, e.g. Parameters.VpcName.Default=prod-vpc")
}

func runCmdRender(_ *cobra.Command, _ []string) error {
	d, err := loadDeployer(false)
	if err != nil {
		return fmt.Errorf("Failed to read stack config: %v", err)
	}

	body, err := d.RenderTemplate(deployer.RenderOptions{
		PrettyPrint: renderOpts.prettyPrint,
		Sets:        renderOpts.sets,
	})
	if err != nil {
		return fmt.Errorf("Failed to render stack template: %v", err)
	}

	if renderOpts.output != "" {
		return ioutil.WriteFile(renderOpts.output, []byte(body), 0600)
	}

	fmt.Println(body)
	return nil
}
