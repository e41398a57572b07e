package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"aqiscraper/pkg/config"
	"aqiscraper/pkg/credentials"
	"aqiscraper/pkg/logger"
	"aqiscraper/pkg/storage"
	"aqiscraper/pkg/ui"
	"aqiscraper/pkg/workunit"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show harvest progress and stored observation counts",
	Long: `Show where the next harvest will resume, how much of the configured plan
is done, and how many observations are stored per zip code. A database
that does not exist yet is reported as empty and is not created.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return printStatus(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(ctx context.Context, w io.Writer, cfg *config.Config) error {
	report, err := buildStatus(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, ui.RenderStatus(report))
	return nil
}

func buildStatus(ctx context.Context, cfg *config.Config) (ui.StatusReport, error) {
	plan, err := workunit.NewPlan(cfg.Harvest.Locations, cfg.Harvest.Years)
	if err != nil {
		return ui.StatusReport{}, fmt.Errorf("invalid harvest plan: %w", err)
	}

	report := ui.StatusReport{
		DatabasePath: cfg.Storage.DatabasePath,
		Cursor:       plan.Initial().String(),
		Total:        plan.Total(),
		Stored:       map[string]int{},
		Expected:     plan.Total() / len(plan.Locations()),
		APIKey:       describeAPIKey(cfg),
	}

	if cfg.Storage.DatabasePath != ":memory:" {
		if _, err := os.Stat(cfg.Storage.DatabasePath); errors.Is(err, fs.ErrNotExist) {
			return report, nil
		} else if err != nil {
			return ui.StatusReport{}, fmt.Errorf("failed to inspect database: %w", err)
		}
	}

	store, err := storage.Open(cfg.Storage.DatabasePath, logger.NewNopLogger())
	if err != nil {
		return ui.StatusReport{}, err
	}
	defer store.Close()

	cursor, ok, err := store.Cursor(ctx)
	if err != nil {
		return ui.StatusReport{}, err
	}
	if !ok {
		cursor = plan.Initial()
	}

	position, err := plan.Ordinal(cursor)
	if err != nil {
		return ui.StatusReport{}, fmt.Errorf("stored cursor %s does not match the configured plan: %w", cursor, err)
	}

	counts, err := store.CountObservationsByLocation(ctx)
	if err != nil {
		return ui.StatusReport{}, err
	}

	report.DatabasePath = store.Path()
	report.Cursor = cursor.String()
	report.Exhausted = plan.IsExhausted(cursor)
	report.Position = position
	report.Stored = counts
	return report, nil
}

func describeAPIKey(cfg *config.Config) string {
	if cfg.AirNow.APIKey != "" {
		return credentials.Mask(cfg.AirNow.APIKey) + " (configuration)"
	}
	manager, err := newCredentialManager()
	if err != nil {
		return "unavailable"
	}
	key, from, err := manager.Get(credentials.DefaultKeyName)
	if err != nil {
		return "not set"
	}
	return fmt.Sprintf("%s (%s)", credentials.Mask(key.Value), from)
}
