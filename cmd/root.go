package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/secprep/internal/config"
	"github.com/abhisek/secprep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "secprep",
	Short: "Timed practice exams for IT and cybersecurity",
	Long:  "secprep runs timed multiple-choice practice exams in the terminal and reports scores to a course platform.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, "")
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SECPREP_DB)")
	rootCmd.PersistentFlags().String("banks-dir", "", "Directory with user question banks")
	rootCmd.PersistentFlags().String("config", "", "Config file (default $XDG_CONFIG_HOME/secprep/config.yaml)")
	rootCmd.PersistentFlags().String("env-file", "", "Env file loaded before reading config (default .env)")

	rootCmd.AddCommand(takeCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration with persistent flags taking
// precedence over the config file and environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := config.Options{Overrides: map[string]any{}}
	opts.File, _ = cmd.Flags().GetString("config")
	opts.EnvFile, _ = cmd.Flags().GetString("env-file")
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		opts.Overrides["db"] = p
	}
	if d, _ := cmd.Flags().GetString("banks-dir"); d != "" {
		opts.Overrides["banks_dir"] = d
	}

	cfg, err := config.Load(opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore loads the configuration and opens the database it names.
func openStore(cmd *cobra.Command) (*config.Config, *store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureDir(cfg.DBPath); err != nil {
		return nil, nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, s, nil
}
