package cmd

import (
	"github.com/spf13/cobra"
)

var takeCmd = &cobra.Command{
	Use:   "take <slug>",
	Short: "Start or resume an exam directly",
	Long:  "Start the exam for a question bank, resuming saved progress unless --fresh is given.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, args[0])
	},
}

func init() {
	takeCmd.Flags().Bool("fresh", false, "Discard saved progress and start over")
}
