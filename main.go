package main

import (
	"fmt"
	"os"

	"github.com/temirov/gfc/cmd/cli"
)

const (
	exitErrorTemplateConstant = "Failed to checkout issue branch: %v\n"
)

// main executes the gfc command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
