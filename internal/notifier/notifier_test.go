package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agriprice/internal/model"
)

func newTestNotifier(t *testing.T, handler http.HandlerFunc) *TelegramNotifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("token", "chat-1", "", zap.NewNop())
	n.APIBase = srv.URL
	return n
}

func TestSend(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "chat-1", payload["chat_id"])
		assert.Equal(t, "HTML", payload["parse_mode"])
		w.Write([]byte(`{"ok":true}`))
	})
	assert.NoError(t, n.Send(context.Background(), "hello"))
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	var calls atomic.Int32
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	err := n.SendWithRetry(context.Background(), "hello", 1)
	assert.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendWithRetry_StopsOnCancel(t *testing.T) {
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := n.SendWithRetry(ctx, "hello", 5)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFormatStats(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	out := FormatStats("Wheat", &model.Stats{Current: 41.2, Average: 38.456, Highest: 52.3, Lowest: 22.1},
		time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), now)
	assert.Contains(t, out, "<b>Wheat</b>")
	assert.Contains(t, out, "Current Price: ₹41.20")
	assert.Contains(t, out, "Average Price: ₹38.46")
	assert.Contains(t, out, "2025-05-31 (2 weeks ago)")
}

func TestFormatDigest(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	out := FormatDigest([]DigestEntry{
		{Commodity: "Onion", Stats: &model.Stats{Current: 30, Average: 28, Highest: 40, Lowest: 15}, Change: 2.5, RSI: 61,
			LastDate: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)},
		{Commodity: "Tur", Err: "Failed to load statistics"},
	}, now)
	assert.Contains(t, out, "<b>Onion</b> ₹30.00 (+2.5%)")
	assert.Contains(t, out, "RSI 61")
	assert.Contains(t, out, "• Tur: Failed to load statistics")
	assert.Contains(t, out, "Data as of 2 weeks ago.")
}

func TestFormatCommodities(t *testing.T) {
	assert.Equal(t, "No commodities available.", FormatCommodities(nil))
	assert.Equal(t, "Tracked commodities:\n• Potato\n• Gram &amp; Dal", FormatCommodities([]string{"Potato", "Gram & Dal"}))
}

func TestDispatch_OnlyConfiguredChat(t *testing.T) {
	var sent atomic.Int32
	n := newTestNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		sent.Add(1)
		w.Write([]byte(`{"ok":true}`))
	})
	n.ChatID = "42"

	var updates []telegramUpdate
	require.NoError(t, json.Unmarshal([]byte(`[
		{"update_id": 7, "message": {"text": "/digest", "chat": {"id": 99}}},
		{"update_id": 8, "message": {"text": " /stats Wheat ", "chat": {"id": 42}}},
		{"update_id": 9}
	]`), &updates))

	var got []string
	offset := n.dispatch(context.Background(), updates, func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		return "ok"
	})
	assert.Equal(t, 10, offset)
	assert.Equal(t, []string{"/stats Wheat"}, got)
	assert.Equal(t, int32(1), sent.Load())
}

func TestFormatSinceSnapshot(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Since snapshot 1 week ago: ₹40.00 → ₹38.00 (-5.0%)\n",
		FormatSinceSnapshot(40, 38, now.Add(-8*24*time.Hour), now))
	assert.Contains(t, FormatSinceSnapshot(0, 12, now.Add(-time.Hour), now), "(+0.0%)")
}
