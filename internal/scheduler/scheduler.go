package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"agriprice/internal/calculator"
	"agriprice/internal/collector"
	"agriprice/internal/model"
	"agriprice/internal/notifier"
	"agriprice/internal/recorder"
)

// Sender delivers formatted messages. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the periodic digest and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  Sender // nil disables delivery
	Recorder  recorder.Recorder
	Ctx       context.Context
	Log       *zap.Logger
	Now       func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, sender Sender, rec recorder.Recorder, log *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  sender,
		Recorder:  rec,
		Ctx:       ctx,
		Log:       log,
		Now:       time.Now,
	}
}

// Register adds the digest task on digestCron.
func (s *Scheduler) Register(digestCron string) error {
	if _, err := s.Cron.AddFunc(digestCron, s.digestTask); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

func (s *Scheduler) digestTask() {
	s.Log.Info("running digest task")
	digest, err := s.RunDigest(s.Ctx)
	if err != nil {
		s.Log.Error("digest failed", zap.Error(err))
		s.trySend("❌ Daily digest failed: " + collector.MsgCommoditiesFailed)
		return
	}
	s.trySend(digest)
}

// RunDigest collects every commodity, records a snapshot of each and returns the formatted digest.
func (s *Scheduler) RunDigest(ctx context.Context) (string, error) {
	names, err := s.Collector.Fetcher.Commodities(ctx)
	if err != nil {
		return "", fmt.Errorf("list commodities: %w", err)
	}

	now := s.Now()
	entries := make([]notifier.DigestEntry, 0, len(names))
	for _, name := range names {
		entry := s.digestEntry(ctx, name)
		entries = append(entries, entry)
		if entry.Stats == nil {
			continue
		}
		snap := &recorder.Snapshot{Commodity: name, Stats: *entry.Stats, TakenAt: now}
		if !entry.LastDate.IsZero() {
			snap.LastDate = entry.LastDate.Format(model.DateLayout)
		}
		if err := s.Recorder.RecordSnapshot(ctx, snap); err != nil {
			s.Log.Error("record snapshot failed", zap.String("commodity", name), zap.Error(err))
		}
	}
	return notifier.FormatDigest(entries, now), nil
}

func (s *Scheduler) digestEntry(ctx context.Context, name string) notifier.DigestEntry {
	ov := s.Collector.Detail(ctx, name)
	entry := notifier.DigestEntry{Commodity: name, Stats: ov.Stats, Err: ov.StatsErr}
	if ov.History == nil || ov.History.Len() == 0 {
		return entry
	}

	prices := ov.History.Prices
	n := len(prices)
	if n >= 2 {
		entry.Change = calculator.PercentChange(prices[n-2], prices[n-1])
	}
	if rsi, err := calculator.CalculateRSI(prices, 14); err == nil {
		entry.RSI = rsi
	}
	if d, err := time.Parse(model.DateLayout, ov.History.Dates[n-1]); err == nil {
		entry.LastDate = d
	}
	return entry
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	switch fields[0] {
	case "/stats":
		if len(fields) < 2 {
			return "Usage: /stats &lt;commodity&gt;"
		}
		name := strings.Join(fields[1:], " ")
		ov := s.Collector.Detail(ctx, name)
		if ov.Stats == nil {
			return ov.StatsErr
		}
		var last time.Time
		if n := ov.History.Len(); n > 0 {
			last, _ = time.Parse(model.DateLayout, ov.History.Dates[n-1])
		}
		now := s.Now()
		reply := notifier.FormatStats(name, ov.Stats, last, now)
		snaps, err := s.Recorder.RecentSnapshots(ctx, name, 1)
		if err != nil {
			s.Log.Warn("load snapshots failed", zap.String("commodity", name), zap.Error(err))
		} else if len(snaps) > 0 {
			reply += notifier.FormatSinceSnapshot(snaps[0].Stats.Current, ov.Stats.Current, snaps[0].TakenAt, now)
		}
		return reply
	case "/commodities":
		names, err := s.Collector.Fetcher.Commodities(ctx)
		if err != nil {
			s.Log.Warn("commodities fetch failed", zap.Error(err))
			return collector.MsgCommoditiesFailed
		}
		return notifier.FormatCommodities(names)
	case "/digest":
		digest, err := s.RunDigest(ctx)
		if err != nil {
			s.Log.Warn("digest failed", zap.Error(err))
			return collector.MsgCommoditiesFailed
		}
		return digest
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Error("send notification failed", zap.Error(err))
	}
}
