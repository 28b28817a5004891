package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/abhisek/secprep/internal/app"
	"github.com/abhisek/secprep/internal/bank"
	"github.com/abhisek/secprep/internal/config"
	"github.com/abhisek/secprep/internal/results"
	"github.com/abhisek/secprep/internal/screen"
	"github.com/abhisek/secprep/internal/screens"
	"github.com/abhisek/secprep/internal/screens/session"
	"github.com/abhisek/secprep/internal/store"
)

var errNoTerminal = errors.New("secprep needs an interactive terminal")

// runApp opens the store, builds the screen environment, and launches the
// TUI. A non-empty slug starts that exam on top of the home screen.
func runApp(cmd *cobra.Command, slug string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	cfg, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	env, err := buildEnv(cfg, st)
	if err != nil {
		return err
	}

	var first screen.Screen
	if slug != "" {
		fresh, _ := cmd.Flags().GetBool("fresh")
		if first, err = examScreen(cmd.Context(), env, slug, fresh); err != nil {
			return err
		}
	}
	return app.Run(env, first)
}

func buildEnv(cfg *config.Config, st *store.Store) (*screens.Env, error) {
	reg, err := bank.NewRegistry(cfg.BanksDir)
	if err != nil {
		return nil, fmt.Errorf("load question banks: %w", err)
	}
	for _, w := range reg.Warnings {
		fmt.Fprintf(os.Stderr, "warning: skipping bank: %v\n", w)
	}

	if cfg.API.Token != "" {
		if err := results.CheckToken(cfg.API.Token, time.Now()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v; result submission will fail until it is renewed\n", err)
		}
	}

	events := st.EventRepo()
	return &screens.Env{
		Banks:     reg,
		Events:    events,
		Snapshots: st.SnapshotRepo(),
		Reporter:  results.New(reporterOptions(cfg), events),
		TimeLimit: cfg.Exam.TimeLimit,
	}, nil
}

func reporterOptions(cfg *config.Config) results.Options {
	return results.Options{
		BaseURL:      cfg.API.BaseURL,
		Token:        cfg.API.Token,
		Timeout:      cfg.API.Timeout,
		SendgridKey:  cfg.Email.SendgridKey,
		SendgridHost: cfg.Email.SendgridHost,
		FromName:     cfg.Email.FromName,
		FromAddress:  cfg.Email.From,
	}
}

// examScreen resumes the saved attempt for slug unless fresh is set or the
// snapshot no longer fits the bank, in which case a new attempt starts.
func examScreen(ctx context.Context, env *screens.Env, slug string, fresh bool) (screen.Screen, error) {
	b, err := env.Banks.Get(slug)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %v)", err, env.Banks.Slugs())
	}

	snap, err := env.Snapshots.Latest(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load saved progress: %w", err)
	}
	if snap != nil && !fresh {
		s, err := session.Resume(env, b, snap)
		if err == nil {
			return s, nil
		}
		fmt.Fprintf(os.Stderr, "warning: cannot resume %s: %v\n", slug, err)
	}
	if snap != nil {
		_ = env.Snapshots.Delete(ctx, slug)
	}
	return session.New(env, b)
}
