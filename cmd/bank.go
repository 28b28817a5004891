package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/secprep/internal/bank"
	"github.com/abhisek/secprep/internal/bankfetch"
	"github.com/abhisek/secprep/internal/bankgen"
	"github.com/abhisek/secprep/internal/exam"
	"github.com/abhisek/secprep/internal/llm"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Manage question banks",
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available question banks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reg, err := bank.NewRegistry(cfg.BanksDir)
		if err != nil {
			return err
		}
		for _, w := range reg.Warnings {
			fmt.Fprintf(os.Stderr, "warning: skipping bank: %v\n", w)
		}

		fmt.Printf("%-20s  %-32s  %-8s  %9s  %6s  %s\n",
			"Slug", "Title", "Version", "Questions", "Time", "Source")
		fmt.Println(strings.Repeat("─", 100))
		for _, b := range reg.List() {
			limit := exam.ResolveTimeLimit(cfg.Exam.TimeLimit, b)
			fmt.Printf("%-20s  %-32s  %-8s  %9d  %6s  %s\n",
				b.Slug, truncate(b.Title, 32), b.Version, b.Len(),
				fmt.Sprintf("%dm", limit/60), b.Source)
		}
		fmt.Printf("\nUser banks are read from %s\n", cfg.BanksDir)
		return nil
	},
}

var bankValidateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Check bank files against the schema and content rules",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			b, err := bank.LoadFile(path)
			if err != nil {
				failed++
				fmt.Printf("✗ %s\n  %v\n", path, err)
				continue
			}
			fmt.Printf("✓ %s  %s %s, %d questions\n", path, b.Slug, b.Version, b.Len())
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files invalid", failed, len(args))
		}
		return nil
	},
}

var bankDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a new question bank with the configured LLM",
	Long: "Ask the configured LLM for multiple-choice questions on a topic and write them as a bank file.\n" +
		"Drafts pass the same validation as hand-written banks but should be reviewed before use.",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bankgen.Input{}
		in.Slug, _ = cmd.Flags().GetString("slug")
		in.Title, _ = cmd.Flags().GetString("title")
		in.Topic, _ = cmd.Flags().GetString("topic")
		in.Difficulty, _ = cmd.Flags().GetString("difficulty")
		in.Count, _ = cmd.Flags().GetInt("count")
		in.Options, _ = cmd.Flags().GetInt("options")
		minutes, _ := cmd.Flags().GetInt("minutes")
		in.TimeLimitSecs = minutes * 60
		out, _ := cmd.Flags().GetString("out")
		if in.Title == "" {
			in.Title = in.Topic
		}

		cfg, s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if out == "" {
			out = filepath.Join(cfg.BanksDir, in.Slug+".yaml")
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(out); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", out)
		}

		ctx := cmd.Context()
		provider, err := llm.New(ctx, cfg.LLM, s.EventRepo())
		if err != nil {
			if errors.Is(err, llm.ErrNoProvider) {
				return fmt.Errorf("%w: set llm.provider and an API key, e.g. ANTHROPIC_API_KEY", err)
			}
			return err
		}

		fmt.Printf("Drafting %d questions on %q with %s (%s)...\n", in.Count, in.Topic, provider.Name(), provider.Model())
		b, err := bankgen.New(provider).Draft(ctx, in)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(out), err)
		}
		if err := bank.WriteFile(out, b); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d questions). Review it, then run: secprep take %s\n", out, b.Len(), b.Slug)
		return nil
	},
}

var bankInstallCmd = &cobra.Command{
	Use:   "install <url>",
	Short: "Download a bank file or a .tar.gz/.zip pack of banks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sum, _ := cmd.Flags().GetString("sha256")
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		installed, err := bankfetch.New().Install(ctx, bankfetch.Input{
			URL:    args[0],
			SHA256: sum,
			Dir:    cfg.BanksDir,
			Force:  force,
		}, func(p bankfetch.Progress) {
			fmt.Println(p.Message)
		})
		if err != nil {
			return err
		}
		if len(installed) == 0 {
			fmt.Println("Nothing installed.")
		}
		return nil
	},
}

func init() {
	bankDraftCmd.Flags().String("slug", "", "Bank slug, reported as the test type")
	bankDraftCmd.Flags().String("title", "", "Exam title (defaults to the topic)")
	bankDraftCmd.Flags().String("topic", "", "What the questions should cover")
	bankDraftCmd.Flags().String("difficulty", "mixed", "easy, medium, hard or mixed")
	bankDraftCmd.Flags().Int("count", 10, "Number of questions")
	bankDraftCmd.Flags().Int("options", 4, "Options per question")
	bankDraftCmd.Flags().Int("minutes", 0, "Time limit in minutes (0 leaves it to the config)")
	bankDraftCmd.Flags().StringP("out", "o", "", "Output file, .yaml or .json (default <banks-dir>/<slug>.yaml)")
	bankDraftCmd.Flags().Bool("force", false, "Overwrite an existing file")
	_ = bankDraftCmd.MarkFlagRequired("slug")
	_ = bankDraftCmd.MarkFlagRequired("topic")

	bankInstallCmd.Flags().String("sha256", "", "Expected SHA-256 of the download")
	bankInstallCmd.Flags().Bool("force", false, "Install even when the same or a newer version is present")

	bankCmd.AddCommand(bankListCmd)
	bankCmd.AddCommand(bankValidateCmd)
	bankCmd.AddCommand(bankDraftCmd)
	bankCmd.AddCommand(bankInstallCmd)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
