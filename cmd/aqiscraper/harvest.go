package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"aqiscraper/pkg/airnow"
	"aqiscraper/pkg/checkpoint"
	"aqiscraper/pkg/config"
	"aqiscraper/pkg/credentials"
	"aqiscraper/pkg/harvest"
	"aqiscraper/pkg/logger"
	"aqiscraper/pkg/ratelimit"
	"aqiscraper/pkg/retry"
	"aqiscraper/pkg/storage"
	"aqiscraper/pkg/ui"
	"aqiscraper/pkg/workunit"

	"github.com/spf13/cobra"
)

// harvestStore is the part of storage.Store the harvest needs
type harvestStore interface {
	harvest.ObservationWriter
	checkpoint.Backend
	Close() error
}

var openStore = func(path string, log logger.Logger) (harvestStore, error) {
	return storage.Open(path, log)
}

var newCredentialManager = credentials.DefaultManager

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	log := logger.GetLogger()
	log.WithField("version", version).Info("aqiscraper starting")

	if err := resolveAPIKey(cfg, log); err != nil {
		log.WithError(err).Error("No API key available")
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := harvestWithConfig(ctx, cfg, log)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Harvest interrupted, progress saved")
			ui.PrintWarning("Harvest interrupted, rerun to resume")
		} else {
			log.WithError(err).Error("Harvest failed")
		}
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Harvest complete: %d saved, %d already stored, %d skipped",
		summary.Saved, summary.Duplicates, summary.Skipped))
	return nil
}

// harvestWithConfig opens the database, runs one harvest and closes the
// database again on every path
func harvestWithConfig(ctx context.Context, cfg *config.Config, log logger.Logger) (summary harvest.Summary, err error) {
	plan, err := workunit.NewPlan(cfg.Harvest.Locations, cfg.Harvest.Years)
	if err != nil {
		return summary, fmt.Errorf("invalid harvest plan: %w", err)
	}

	store, err := openStore(cfg.Storage.DatabasePath, log)
	if err != nil {
		return summary, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Failed to close database")
			if err == nil {
				err = fmt.Errorf("failed to close database: %w", closeErr)
			}
		}
	}()

	policy := retry.ConnectPolicy(cfg.Retry.ConnectRetries, cfg.Retry.BackoffBase, cfg.Retry.BackoffMultiplier, log)
	limiter := ratelimit.NewRequestLimiter(cfg.RateLimit.RequestsPerHour)

	h := harvest.New(plan, harvest.Dependencies{
		Fetcher:      airnow.NewClient(&cfg.AirNow, policy, limiter, log),
		Observations: store,
		Cursors:      checkpoint.NewManager(store, plan.Initial(), log),
		Pacer:        ratelimit.NewFixedDelay(cfg.Harvest.PacingInterval),
		Logger:       log,
	})

	return h.Run(ctx)
}

// resolveAPIKey fills cfg.AirNow.APIKey from the credential stores when
// configuration did not provide one
func resolveAPIKey(cfg *config.Config, log logger.Logger) error {
	if cfg.AirNow.APIKey != "" {
		return nil
	}

	manager, err := newCredentialManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	key, from, err := manager.Get(credentials.DefaultKeyName)
	if err != nil {
		return fmt.Errorf("no AirNow API key configured; set %sAPI_KEY or run 'aqiscraper auth set-key': %w",
			config.EnvPrefix, err)
	}

	cfg.AirNow.APIKey = key.Value
	log.WithField("source", from).Info("Using stored API key")
	return nil
}
