package main

import (
	"os"

	"github.com/piontas/cfndeployer/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(2)
	}
}
