package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/secprep/internal/bankgen"
	"github.com/abhisek/secprep/internal/llm"
	"github.com/abhisek/secprep/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request events",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events with estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		_, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		if len(events) == 0 {
			fmt.Println("No LLM events found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-12s  %-11s  %-28s  %-6s  %-6s  %-7s  %-9s  %s\n",
			"Seq", "Timestamp", "Purpose", "Provider", "Model", "In", "Out", "Ms", "Cost", "OK")
		fmt.Println(strings.Repeat("─", 120))

		var total float64
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗ " + e.ErrorMessage
			}
			cost := "-"
			if p, known := llm.PriceOf(e.Model); known {
				c := p.Cost(llm.Usage{InputTokens: e.InputTokens, OutputTokens: e.OutputTokens})
				total += c
				cost = fmt.Sprintf("$%.4f", c)
			}
			fmt.Printf("%-5d  %-19s  %-12s  %-11s  %-28s  %-6d  %-6d  %-7d  %-9s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				e.Provider,
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				cost,
				ok,
			)
		}
		fmt.Println(strings.Repeat("─", 120))
		fmt.Printf("Estimated cost of listed calls: $%.4f\n", total)
		return nil
	},
}

func init() {
	llmListCmd.Flags().Int("limit", 20, "Maximum number of events")
	llmListCmd.Flags().String("purpose", "", "Only show events with this purpose, e.g. "+bankgen.Purpose)

	llmCmd.AddCommand(llmListCmd)
}
