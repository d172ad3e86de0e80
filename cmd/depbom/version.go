package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-depbom"
	"github.com/albertocavalcante/go-depbom/bom"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print the version",
		Args:              cobra.NoArgs,
		DisableAutoGenTag: true,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (CycloneDX %s, %s)\n", depbom.ToolName, depbom.Version, bom.SpecVersion, runtime.Version())
		},
	}
}
