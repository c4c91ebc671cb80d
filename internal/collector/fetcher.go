package collector

import (
	"context"

	"agriprice/internal/model"
)

// Fetcher defines the interface for reading from the prices API.
type Fetcher interface {
	Commodities(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, commodity string) (*model.Stats, error)
	History(ctx context.Context, commodity string) (*model.PriceHistory, error)
	Predict(ctx context.Context, req model.PredictionRequest) (*model.PredictionResponse, error)
	Name() string
}
