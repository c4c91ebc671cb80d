package collector

import (
	"context"
	"fmt"

	"agriprice/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// A non-nil error field makes the matching call fail.
type MockFetcher struct {
	Names      []string
	StatsBy    map[string]model.Stats
	HistoryBy  map[string]model.PriceHistory
	PriceStart float64

	CommoditiesErr error
	StatsErr       error
	HistoryErr     error
	PredictErr     error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Commodities(_ context.Context) ([]string, error) {
	if m.CommoditiesErr != nil {
		return nil, m.CommoditiesErr
	}
	return m.Names, nil
}

func (m *MockFetcher) Stats(_ context.Context, commodity string) (*model.Stats, error) {
	if m.StatsErr != nil {
		return nil, m.StatsErr
	}
	s, ok := m.StatsBy[commodity]
	if !ok {
		return nil, fmt.Errorf("status 404, body: unknown commodity %s", commodity)
	}
	return &s, nil
}

func (m *MockFetcher) History(_ context.Context, commodity string) (*model.PriceHistory, error) {
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	h, ok := m.HistoryBy[commodity]
	if !ok {
		return nil, fmt.Errorf("status 404, body: unknown commodity %s", commodity)
	}
	return &h, nil
}

// Predict returns months entries counting up from PriceStart, one month apart.
func (m *MockFetcher) Predict(_ context.Context, req model.PredictionRequest) (*model.PredictionResponse, error) {
	if m.PredictErr != nil {
		return nil, m.PredictErr
	}
	resp := &model.PredictionResponse{}
	for i := 0; i < req.Months; i++ {
		resp.Dates = append(resp.Dates, fmt.Sprintf("2030-%02d-28", i%12+1))
		resp.Predictions = append(resp.Predictions, m.PriceStart+float64(i))
	}
	return resp, nil
}
