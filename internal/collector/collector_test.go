package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agriprice/internal/model"
)

func newMock() *MockFetcher {
	return &MockFetcher{
		Names: []string{"Potato", "Wheat"},
		StatsBy: map[string]model.Stats{
			"Potato": {Current: 21, Average: 20, Highest: 35, Lowest: 10},
			"Wheat":  {Current: 41.2, Average: 38.5, Highest: 52.3, Lowest: 22.1},
		},
		HistoryBy: map[string]model.PriceHistory{
			"Potato": {Dates: []string{"2024-01-31"}, Prices: []float64{21}},
			"Wheat":  {Dates: []string{"2024-01-31", "2024-02-29"}, Prices: []float64{40, 41.2}},
		},
		PriceStart: 50,
	}
}

func TestOverview_SelectsRequestedCommodity(t *testing.T) {
	c := NewCollector(newMock(), zap.NewNop())
	ov := c.Overview(context.Background(), "Wheat")

	assert.Equal(t, "Wheat", ov.Selected)
	require.NotNil(t, ov.Stats)
	assert.Equal(t, 41.2, ov.Stats.Current)
	assert.Equal(t, 2, ov.History.Len())
	assert.Empty(t, ov.StatsErr)
	assert.Empty(t, ov.HistoryErr)
}

func TestOverview_DefaultsToFirstCommodity(t *testing.T) {
	c := NewCollector(newMock(), zap.NewNop())
	for _, requested := range []string{"", "Rice"} {
		ov := c.Overview(context.Background(), requested)
		assert.Equal(t, "Potato", ov.Selected, "requested %q", requested)
		assert.Equal(t, 21.0, ov.Stats.Current)
	}
}

func TestOverview_FailedFragmentsCarryNoData(t *testing.T) {
	m := newMock()
	m.StatsErr = errors.New("connection refused")
	c := NewCollector(m, zap.NewNop())

	ov := c.Overview(context.Background(), "Wheat")
	assert.Nil(t, ov.Stats)
	assert.Equal(t, MsgStatsFailed, ov.StatsErr)
	assert.NotNil(t, ov.History, "history is independent of stats")

	m.StatsErr = nil
	m.HistoryErr = errors.New("status 500")
	ov = c.Overview(context.Background(), "Wheat")
	assert.NotNil(t, ov.Stats)
	assert.Nil(t, ov.History)
	assert.Equal(t, MsgHistoryFailed, ov.HistoryErr)
}

func TestOverview_CommodityListFailure(t *testing.T) {
	m := newMock()
	m.CommoditiesErr = errors.New("timeout")
	c := NewCollector(m, zap.NewNop())

	ov := c.Overview(context.Background(), "")
	assert.Equal(t, MsgCommoditiesFailed, ov.CommoditiesErr)
	assert.Empty(t, ov.Selected)
	assert.Nil(t, ov.Stats)

	ov = c.Overview(context.Background(), "Wheat")
	assert.Equal(t, "Wheat", ov.Selected)
	assert.NotNil(t, ov.Stats)
}

func TestPredict_ReturnsRowsInOrder(t *testing.T) {
	c := NewCollector(newMock(), zap.NewNop())
	p := c.Predict(context.Background(), "Wheat", 5)

	assert.Empty(t, p.Err)
	require.Len(t, p.Rows, 5)
	for i, row := range p.Rows {
		assert.Equal(t, 50+float64(i), row.Price)
	}
}

type shortFetcher struct{ *MockFetcher }

func (s shortFetcher) Predict(ctx context.Context, req model.PredictionRequest) (*model.PredictionResponse, error) {
	req.Months--
	return s.MockFetcher.Predict(ctx, req)
}

func TestPredict_Failures(t *testing.T) {
	m := newMock()
	m.PredictErr = errors.New("status 400")
	p := NewCollector(m, zap.NewNop()).Predict(context.Background(), "Wheat", 3)
	assert.Equal(t, MsgPredictionFailed, p.Err)
	assert.Empty(t, p.Rows)

	p = NewCollector(shortFetcher{newMock()}, zap.NewNop()).Predict(context.Background(), "Wheat", 3)
	assert.Equal(t, MsgPredictionFailed, p.Err)
	assert.Empty(t, p.Rows)
}

func TestDetail_SkipsCommodityList(t *testing.T) {
	m := newMock()
	m.CommoditiesErr = errors.New("list must not be fetched")
	ov := NewCollector(m, zap.NewNop()).Detail(context.Background(), "Potato")

	assert.Empty(t, ov.CommoditiesErr)
	assert.Equal(t, 21.0, ov.Stats.Current)
	assert.Equal(t, 1, ov.History.Len())
}
