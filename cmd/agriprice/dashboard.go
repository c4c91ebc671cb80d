package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agriprice/internal/collector"
	"agriprice/internal/dashboard"
	"agriprice/internal/notifier"
	"agriprice/internal/recorder"
	"agriprice/internal/scheduler"
)

var mockData bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the HTML dashboard",
	Long: `Serves the dashboard backed by the prices API at dashboard.api_base_url.
When Telegram is configured it also pushes a scheduled digest and answers chat commands.`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&mockData, "mock", false, "Serve fixed sample data instead of calling the API")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateDashboard(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var fetcher collector.Fetcher
	if mockData {
		fetcher = sampleFetcher()
	} else {
		fetcher = collector.NewAPIClient(cfg.Dashboard.APIBaseURL, cfg.Proxy, cfg.Timeout())
	}
	logger.Info("data source", zap.String("fetcher", fetcher.Name()))
	col := collector.NewCollector(fetcher, logger)

	rec := openRecorder(cfg.Dashboard.SQLitePath)
	defer rec.Close()

	var sender scheduler.Sender
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, col, sender, rec, logger)
	if err := sched.Register(cfg.Schedule.DigestCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Info("telegram polling started")
	}

	srv, err := dashboard.NewServer(col, rec, logger)
	if err != nil {
		return fmt.Errorf("init dashboard: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Listen(cfg.Dashboard.Listen)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, stopping dashboard")
		return srv.Shutdown()
	})
	return g.Wait()
}

func openRecorder(path string) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("create recorder dir failed, using noop", zap.Error(err))
			return recorder.NewNoopRecorder()
		}
	}
	sr, err := recorder.NewSQLiteRecorder(path, logger)
	if err != nil {
		logger.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	return sr
}
