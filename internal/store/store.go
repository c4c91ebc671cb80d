package store

import (
	"context"
	"errors"
	"sync"

	"agriprice/internal/model"
)

// ErrUnknownCommodity is returned when a series is requested for a name not in the dataset.
var ErrUnknownCommodity = errors.New("unknown commodity")

// Store is the price dataset backing the API.
type Store interface {
	Commodities(ctx context.Context) ([]string, error)
	Series(ctx context.Context, commodity string) (*model.Series, error)
	ReplaceAll(ctx context.Context, ds *model.Dataset) error
	Close() error
}

// MemoryStore keeps the dataset in memory. Used in tests and when no database is configured.
type MemoryStore struct {
	mu sync.RWMutex
	ds *model.Dataset
}

func NewMemoryStore(ds *model.Dataset) *MemoryStore {
	if ds == nil {
		ds = &model.Dataset{}
	}
	return &MemoryStore{ds: ds}
}

func (m *MemoryStore) Commodities(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ds.Names(), nil
}

func (m *MemoryStore) Series(_ context.Context, commodity string) (*model.Series, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.ds.Series {
		if s.Commodity == commodity {
			points := make([]model.PricePoint, len(s.Points))
			copy(points, s.Points)
			return &model.Series{Commodity: s.Commodity, Points: points}, nil
		}
	}
	return nil, ErrUnknownCommodity
}

func (m *MemoryStore) ReplaceAll(_ context.Context, ds *model.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = ds
	return nil
}

func (m *MemoryStore) Close() error { return nil }
