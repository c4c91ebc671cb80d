package calculator

import (
	"errors"
	"math"

	"agriprice/internal/model"
)

// ErrEmptySeries is returned when statistics are requested for no data.
var ErrEmptySeries = errors.New("no prices provided")

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RoundAll rounds every value to two decimals in place and returns the slice.
func RoundAll(values []float64) []float64 {
	for i, v := range values {
		values[i] = Round2(v)
	}
	return values
}

// Summarize returns the last, mean, highest and lowest price, each rounded to two decimals.
func Summarize(prices []float64) (model.Stats, error) {
	if len(prices) == 0 {
		return model.Stats{}, ErrEmptySeries
	}
	high := math.Inf(-1)
	low := math.Inf(1)
	sum := 0.0
	for _, p := range prices {
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
		sum += p
	}
	return model.Stats{
		Current: Round2(prices[len(prices)-1]),
		Average: Round2(sum / float64(len(prices))),
		Highest: Round2(high),
		Lowest:  Round2(low),
	}, nil
}

// PercentChange returns the change from prev to cur in percent. Zero prev yields zero.
func PercentChange(prev, cur float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}
