package main

import (
	"time"

	"agriprice/internal/calculator"
	"agriprice/internal/collector"
	"agriprice/internal/generator"
	"agriprice/internal/model"
)

// sampleFetcher serves a freshly generated dataset for offline use of the dashboard.
func sampleFetcher() *collector.MockFetcher {
	ds := generator.Generate(time.Now(), generator.DefaultProfiles, generator.NewRand(uint64(time.Now().UnixNano())))
	f := &collector.MockFetcher{
		Names:      ds.Names(),
		StatsBy:    make(map[string]model.Stats, len(ds.Series)),
		HistoryBy:  make(map[string]model.PriceHistory, len(ds.Series)),
		PriceStart: 30,
	}
	for _, s := range ds.Series {
		prices := calculator.RoundAll(s.Prices())
		h := model.PriceHistory{Prices: prices}
		for _, p := range s.Points {
			h.Dates = append(h.Dates, p.Date.Format(model.DateLayout))
		}
		f.HistoryBy[s.Commodity] = h
		if st, err := calculator.Summarize(prices); err == nil {
			f.StatsBy[s.Commodity] = st
		}
	}
	return f
}
