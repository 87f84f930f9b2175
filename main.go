package main

import (
	"fmt"
	"os"

	"github.com/ItsRohitSingh/git-branch-delete/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the git-branch-delete command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(1)
	}
}
