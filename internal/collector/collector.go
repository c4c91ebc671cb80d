package collector

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agriprice/internal/model"
)

// User-visible messages for failed fetches. The underlying error is only logged.
const (
	MsgCommoditiesFailed = "Failed to load commodities"
	MsgStatsFailed       = "Failed to load statistics"
	MsgHistoryFailed     = "Failed to load price data"
	MsgPredictionFailed  = "Failed to get prediction"
)

// Overview is everything the root view shows for one selected commodity.
// A fragment with a non-empty error string has no data.
type Overview struct {
	Commodities    []string
	Selected       string
	Stats          *model.Stats
	History        *model.PriceHistory
	CommoditiesErr string
	StatsErr       string
	HistoryErr     string
	FetchedAt      time.Time
}

// Prediction is the outcome of one prediction request.
type Prediction struct {
	Commodity string
	Months    int
	Rows      []model.PredictedPrice
	Err       string
}

// Collector orchestrates dashboard data fetching.
type Collector struct {
	Fetcher Fetcher
	Log     *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log *zap.Logger) *Collector {
	return &Collector{Fetcher: fetcher, Log: log}
}

// Overview fetches the commodity list, resolves the selection and then fetches
// stats and history for it concurrently. An empty or unknown commodity selects
// the first one in the list.
func (c *Collector) Overview(ctx context.Context, commodity string) *Overview {
	ov := &Overview{FetchedAt: time.Now()}

	names, err := c.Fetcher.Commodities(ctx)
	if err != nil {
		c.Log.Warn("commodities fetch failed", zap.Error(err))
		ov.CommoditiesErr = MsgCommoditiesFailed
	} else {
		ov.Commodities = names
	}

	ov.Selected = resolveSelection(names, commodity, err == nil)
	if ov.Selected == "" {
		return ov
	}
	c.fill(ctx, ov)
	return ov
}

// Detail fetches stats and history for a single commodity without the list.
func (c *Collector) Detail(ctx context.Context, commodity string) *Overview {
	ov := &Overview{Selected: commodity, FetchedAt: time.Now()}
	c.fill(ctx, ov)
	return ov
}

func (c *Collector) fill(ctx context.Context, ov *Overview) {
	log := c.Log.With(zap.String("commodity", ov.Selected))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := c.Fetcher.Stats(gctx, ov.Selected)
		if err != nil {
			log.Warn("stats fetch failed", zap.Error(err))
			ov.StatsErr = MsgStatsFailed
			return nil
		}
		ov.Stats = stats
		return nil
	})
	g.Go(func() error {
		hist, err := c.Fetcher.History(gctx, ov.Selected)
		if err != nil {
			log.Warn("history fetch failed", zap.Error(err))
			ov.HistoryErr = MsgHistoryFailed
			return nil
		}
		ov.History = hist
		return nil
	})
	_ = g.Wait()
}

func resolveSelection(names []string, requested string, listOK bool) string {
	if !listOK {
		// without a list we can only trust an explicit choice
		return requested
	}
	if requested != "" && slices.Contains(names, requested) {
		return requested
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}

// Predict requests a forecast of months entries for commodity.
// A response whose length differs from months is treated as a failure.
func (c *Collector) Predict(ctx context.Context, commodity string, months int) *Prediction {
	p := &Prediction{Commodity: commodity, Months: months}
	log := c.Log.With(zap.String("commodity", commodity), zap.Int("months", months))

	resp, err := c.Fetcher.Predict(ctx, model.PredictionRequest{Months: months, Commodity: commodity})
	if err == nil && len(resp.Rows()) != months {
		err = fmt.Errorf("expected %d predictions, got %d", months, len(resp.Rows()))
	}
	if err != nil {
		log.Warn("prediction failed", zap.Error(err))
		p.Err = MsgPredictionFailed
		return p
	}
	p.Rows = resp.Rows()
	return p
}
