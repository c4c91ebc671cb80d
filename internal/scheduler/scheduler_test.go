package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"agriprice/internal/collector"
	"agriprice/internal/model"
	"agriprice/internal/recorder"
)

type captureSender struct {
	mu   sync.Mutex
	sent []string
}

func (c *captureSender) SendWithRetry(_ context.Context, text string, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, text)
	return nil
}

func mockFetcher() *collector.MockFetcher {
	return &collector.MockFetcher{
		Names: []string{"Onion", "Wheat"},
		StatsBy: map[string]model.Stats{
			"Onion": {Current: 33, Average: 30, Highest: 45, Lowest: 18},
			"Wheat": {Current: 40, Average: 38, Highest: 50, Lowest: 25},
		},
		HistoryBy: map[string]model.PriceHistory{
			"Onion": {Dates: []string{"2025-04-30", "2025-05-31"}, Prices: []float64{30, 33}},
			"Wheat": {Dates: []string{"2025-04-30", "2025-05-31"}, Prices: []float64{40, 40}},
		},
	}
}

func newTestScheduler(t *testing.T, f collector.Fetcher, sender Sender, rec recorder.Recorder) *Scheduler {
	t.Helper()
	s := NewScheduler(context.Background(), collector.NewCollector(f, zap.NewNop()), sender, rec, zap.NewNop())
	s.Now = func() time.Time { return time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC) }
	return s
}

func TestRunDigest_RecordsSnapshots(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "dash.db"), zap.NewNop())
	require.NoError(t, err)
	defer rec.Close()

	s := newTestScheduler(t, mockFetcher(), nil, rec)
	digest, err := s.RunDigest(context.Background())
	require.NoError(t, err)

	assert.Contains(t, digest, "<b>Onion</b> ₹33.00 (+10.0%)")
	assert.Contains(t, digest, "<b>Wheat</b> ₹40.00 (+0.0%)")
	assert.Contains(t, digest, "Data as of 2 weeks ago.")

	snaps, err := rec.RecentSnapshots(context.Background(), "Onion", 10)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 33.0, snaps[0].Stats.Current)
	assert.Equal(t, "2025-05-31", snaps[0].LastDate)
}

func TestDigestTask_SendsDigest(t *testing.T) {
	sender := &captureSender{}
	s := newTestScheduler(t, mockFetcher(), sender, recorder.NewNoopRecorder())
	s.digestTask()
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "AgriPrice daily digest")

	f := mockFetcher()
	f.CommoditiesErr = errors.New("down")
	sender = &captureSender{}
	s = newTestScheduler(t, f, sender, recorder.NewNoopRecorder())
	s.digestTask()
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "Daily digest failed")
}

func TestHandleCommand(t *testing.T) {
	s := newTestScheduler(t, mockFetcher(), nil, recorder.NewNoopRecorder())
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/stats Wheat"), "Current Price: ₹40.00")
	assert.Equal(t, collector.MsgStatsFailed, s.HandleCommand(ctx, "/stats Rice"))
	assert.Contains(t, s.HandleCommand(ctx, "/stats"), "Usage")
	assert.Equal(t, "Tracked commodities:\n• Onion\n• Wheat", s.HandleCommand(ctx, "/commodities"))
	assert.Contains(t, s.HandleCommand(ctx, "/digest"), "AgriPrice daily digest")
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "Available commands")
}

func TestRegister_InvalidCron(t *testing.T) {
	s := newTestScheduler(t, mockFetcher(), nil, recorder.NewNoopRecorder())
	assert.Error(t, s.Register("not a cron"))
	assert.NoError(t, s.Register("0 0 8 * * *"))
}

func TestStartStop_NoLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newTestScheduler(t, mockFetcher(), nil, recorder.NewNoopRecorder())
	require.NoError(t, s.Register("0 0 8 * * *"))
	s.Start()
	s.Stop()
}

func TestHandleCommand_StatsSinceLastSnapshot(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "dash.db"), zap.NewNop())
	require.NoError(t, err)
	defer rec.Close()

	s := newTestScheduler(t, mockFetcher(), nil, rec)
	ctx := context.Background()
	assert.NotContains(t, s.HandleCommand(ctx, "/stats Onion"), "Since snapshot")

	require.NoError(t, rec.RecordSnapshot(ctx, &recorder.Snapshot{
		Commodity: "Onion",
		Stats:     model.Stats{Current: 30, Average: 29, Highest: 40, Lowest: 18},
		LastDate:  "2025-04-30",
		TakenAt:   s.Now().Add(-48 * time.Hour),
	}))
	reply := s.HandleCommand(ctx, "/stats Onion")
	assert.Contains(t, reply, "Current Price: ₹33.00")
	assert.Contains(t, reply, "Since snapshot 2 days ago: ₹30.00 → ₹33.00 (+10.0%)")
}
