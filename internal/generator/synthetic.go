package generator

import (
	"math"
	"math/rand/v2"
	"time"

	"agriprice/internal/forecast"
	"agriprice/internal/model"
)

// Profile describes how one commodity's synthetic series is shaped.
type Profile struct {
	Name      string
	BasePrice float64
	Seasonal  float64 // amplitude of the sine component
	Trend     float64 // multiplier on the 0..15 linear ramp
	Noise     float64 // multiplier on N(0, 2) noise
}

// DefaultProfiles are the tracked commodities in display order.
var DefaultProfiles = []Profile{
	{Name: "Potato", BasePrice: 20, Seasonal: 10, Trend: 1, Noise: 2},
	{Name: "Onion", BasePrice: 25, Seasonal: 10, Trend: 1, Noise: 2},
	{Name: "Gram", BasePrice: 60, Seasonal: 5, Trend: 1.5, Noise: 3},
	{Name: "Tur", BasePrice: 90, Seasonal: 5, Trend: 1.5, Noise: 3},
	{Name: "Wheat", BasePrice: 30, Seasonal: 7, Trend: 1, Noise: 2},
}

// Years of monthly history produced by Generate.
const Years = 5

// MonthEnds returns every month-end date in the five years (365-day years) ending at end.
func MonthEnds(end time.Time) []time.Time {
	start := end.AddDate(0, 0, -Years*365)
	var dates []time.Time
	for d := forecast.EndOfMonth(start); !d.After(end); {
		if !d.Before(start) {
			dates = append(dates, d)
		}
		next := time.Date(d.Year(), d.Month()+1, 1, 0, 0, 0, 0, d.Location())
		d = forecast.EndOfMonth(next)
	}
	return dates
}

// Generate builds a synthetic dataset with seasonal, trend and noise components.
// Prices never fall below half the base price.
func Generate(end time.Time, profiles []Profile, rng *rand.Rand) *model.Dataset {
	dates := MonthEnds(end)
	n := len(dates)
	seasonal := linspace(0, 10*math.Pi, n)
	trend := linspace(0, 15, n)

	ds := &model.Dataset{Series: make([]model.Series, 0, len(profiles))}
	for _, p := range profiles {
		points := make([]model.PricePoint, n)
		for i := 0; i < n; i++ {
			noise := rng.NormFloat64() * 2
			price := p.BasePrice + p.Seasonal*math.Sin(seasonal[i]) + p.Trend*trend[i] + p.Noise*noise
			price = math.Max(price, p.BasePrice*0.5)
			points[i] = model.PricePoint{Date: dates[i], Price: price}
		}
		ds.Series = append(ds.Series, model.Series{Commodity: p.Name, Points: points})
	}
	return ds
}

// NewRand returns a deterministic generator for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	switch n {
	case 0:
		return out
	case 1:
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}
