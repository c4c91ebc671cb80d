package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agriprice/internal/api"
	"agriprice/internal/generator"
	"agriprice/internal/store"
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the prices API",
	Long: `Serves /api/commodities, /api/data, /api/stats and /api/predict from the
SQLite dataset. An empty database is seeded with the synthetic dataset first.`,
	RunE: runAPI,
}

func runAPI(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateAPI(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg.API.SQLitePath)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := seedIfEmpty(ctx, st); err != nil {
		return err
	}

	srv, err := api.NewServer(st, api.Options{
		DefaultCommodity:  cfg.API.DefaultCommodity,
		MaxHorizon:        cfg.API.MaxHorizon,
		ForecastCacheSize: cfg.API.ForecastCacheSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("init api server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Listen(cfg.API.Listen)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, stopping api")
		return srv.Shutdown()
	})
	return g.Wait()
}

func openStore(path string) (*store.SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

func seedIfEmpty(ctx context.Context, st store.Store) error {
	names, err := st.Commodities(ctx)
	if err != nil {
		return fmt.Errorf("list commodities: %w", err)
	}
	if len(names) > 0 {
		logger.Info("dataset loaded", zap.Strings("commodities", names))
		return nil
	}
	logger.Info("empty dataset, generating synthetic prices")
	return seedStore(ctx, st, time.Now(), cfg.API.Seed)
}

func seedStore(ctx context.Context, st store.Store, end time.Time, seed uint64) error {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	ds := generator.Generate(end, generator.DefaultProfiles, generator.NewRand(seed))
	if err := st.ReplaceAll(ctx, ds); err != nil {
		return fmt.Errorf("store dataset: %w", err)
	}
	logger.Info("dataset seeded",
		zap.Strings("commodities", ds.Names()),
		zap.Int("months", len(ds.Series[0].Points)),
		zap.Uint64("seed", seed))
	return nil
}
