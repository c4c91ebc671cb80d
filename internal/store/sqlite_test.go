package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agriprice/internal/model"
)

func sampleDataset() *model.Dataset {
	d := func(m time.Month, day int) time.Time { return time.Date(2024, m, day, 0, 0, 0, 0, time.UTC) }
	return &model.Dataset{Series: []model.Series{
		{Commodity: "Potato", Points: []model.PricePoint{{Date: d(1, 31), Price: 20.5}, {Date: d(2, 29), Price: 21.25}}},
		{Commodity: "Wheat", Points: []model.PricePoint{{Date: d(1, 31), Price: 30}, {Date: d(2, 29), Price: 31.75}}},
	}}
}

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "prices.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.ReplaceAll(ctx, sampleDataset()))

	names, err := s.Commodities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Potato", "Wheat"}, names)

	series, err := s.Series(ctx, "Wheat")
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 31.75}, series.Prices())
	last, ok := series.Last()
	require.True(t, ok)
	assert.Equal(t, "2024-02-29", last.Date.Format(model.DateLayout))
}

func TestSQLiteStore_ReplaceAllOverwrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.ReplaceAll(ctx, sampleDataset()))

	smaller := &model.Dataset{Series: sampleDataset().Series[1:]}
	require.NoError(t, s.ReplaceAll(ctx, smaller))

	names, err := s.Commodities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Wheat"}, names)

	_, err = s.Series(ctx, "Potato")
	assert.ErrorIs(t, err, ErrUnknownCommodity)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(sampleDataset())

	names, err := s.Commodities(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Potato", "Wheat"}, names)

	series, err := s.Series(ctx, "Potato")
	require.NoError(t, err)
	series.Points[0].Price = -1

	again, err := s.Series(ctx, "Potato")
	require.NoError(t, err)
	assert.Equal(t, 20.5, again.Points[0].Price, "callers must not mutate the stored series")

	_, err = s.Series(ctx, "Rice")
	assert.ErrorIs(t, err, ErrUnknownCommodity)
}
