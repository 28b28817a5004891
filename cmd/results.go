package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/secprep/internal/store"
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List submitted exam results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		testType, _ := cmd.Flags().GetString("bank")
		failed, _ := cmd.Flags().GetBool("failed")

		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryResults(cmd.Context(), store.QueryOpts{Limit: limit, TestType: testType})
		if err != nil {
			return fmt.Errorf("query results: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No results recorded yet.")
			return nil
		}

		fmt.Printf("%-19s  %-18s  %-20s  %-24s  %7s  %6s  %-8s  %s\n",
			"Timestamp", "Bank", "Name", "Email", "Score", "Time", "Via", "OK")
		fmt.Println(strings.Repeat("─", 120))
		for _, e := range events {
			if failed && e.Success {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗ " + e.Message
			}
			fmt.Printf("%-19s  %-18s  %-20s  %-24s  %7s  %6s  %-8s  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.TestType, 18),
				truncate(e.Name, 20),
				truncate(e.Email, 24),
				fmt.Sprintf("%d/%d", e.Score, e.Total),
				fmt.Sprintf("%d:%02d", e.TimeTaken/60, e.TimeTaken%60),
				e.Reporter,
				ok,
			)
		}
		return nil
	},
}

func init() {
	resultsCmd.Flags().Int("limit", 50, "Maximum number of results")
	resultsCmd.Flags().String("bank", "", "Only show results for this bank slug")
	resultsCmd.Flags().Bool("failed", false, "Only show failed submissions")
}
