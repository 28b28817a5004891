package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/secprep/internal/config"
	"github.com/abhisek/secprep/internal/results"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the resolved configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with secrets masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if cfg.File != "" {
			fmt.Printf("# from %s\n", cfg.File)
		} else if p, err := config.DefaultPath(); err == nil {
			fmt.Printf("# no config file (looked for %s)\n", p)
		}

		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg.Redacted()); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}

		if cfg.API.Token != "" {
			printToken(results.DescribeToken(cfg.API.Token))
		}
		return nil
	},
}

func printToken(info results.TokenInfo) {
	fmt.Println()
	if !info.IsJWT {
		fmt.Println("API token: opaque")
		return
	}
	fmt.Printf("API token: JWT subject=%q issuer=%q\n", info.Subject, info.Issuer)
	switch {
	case info.ExpiresAt.IsZero():
		fmt.Println("  no expiry")
	case time.Now().Before(info.ExpiresAt):
		fmt.Printf("  expires %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
	default:
		fmt.Printf("  EXPIRED %s\n", info.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
