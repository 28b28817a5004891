package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/secprep/internal/bank"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and supported bank format",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("secprep %s (bank format %s)\n", version, bank.SupportedFormat)
	},
}
