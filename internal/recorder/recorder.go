package recorder

import (
	"context"
	"time"

	"agriprice/internal/model"
)

// Snapshot is one commodity's statistics as seen at a point in time.
type Snapshot struct {
	Commodity string
	Stats     model.Stats
	LastDate  string
	TakenAt   time.Time
}

// PredictionRecord is a prediction requested through the dashboard.
type PredictionRecord struct {
	ID          string
	Commodity   string
	Months      int
	Dates       []string
	Predictions []float64
	Err         string
	RequestedAt time.Time
}

// Recorder persists dashboard history for later analysis.
type Recorder interface {
	RecordSnapshot(ctx context.Context, snap *Snapshot) error
	RecordPrediction(ctx context.Context, rec *PredictionRecord) error
	RecentSnapshots(ctx context.Context, commodity string, limit int) ([]Snapshot, error)
	Close() error
}
