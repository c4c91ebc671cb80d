package forecast

import (
	"errors"
	"math"
)

// SeasonLength is the number of observations per seasonal cycle (monthly data).
const SeasonLength = 12

var (
	ErrEmptySeries  = errors.New("forecast: empty series")
	ErrInvalidSteps = errors.New("forecast: steps must be positive")
)

// Params are the smoothing weights for level, trend and season.
type Params struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

// grid is searched for the weights with the lowest one-step-ahead SSE.
var grid = []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9}

// Method identifies which model produced a forecast.
type Method string

const (
	MethodHoltWinters Method = "holt-winters"
	MethodHolt        Method = "holt"
	MethodFlat        Method = "flat"
)

// Result is a forecast plus the model that produced it.
type Result struct {
	Values []float64
	Method Method
	Params Params
	SSE    float64
}

// Forecast predicts the next steps values of a monthly series.
//
// Series covering at least two seasons use additive Holt-Winters. Shorter
// series fall back to Holt's linear trend, and a single observation yields a
// flat forecast. Predicted values are floored at zero.
func Forecast(series []float64, steps int) (*Result, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}
	if steps < 1 {
		return nil, ErrInvalidSteps
	}

	var res *Result
	switch {
	case len(series) >= 2*SeasonLength:
		res = fitBest(series, steps, true)
	case len(series) >= 2:
		res = fitBest(series, steps, false)
	default:
		vals := make([]float64, steps)
		for i := range vals {
			vals[i] = series[0]
		}
		res = &Result{Values: vals, Method: MethodFlat}
	}

	for i, v := range res.Values {
		if v < 0 {
			res.Values[i] = 0
		}
	}
	return res, nil
}

func fitBest(series []float64, steps int, seasonal bool) *Result {
	best := &Result{SSE: math.Inf(1)}
	gammas := grid
	if !seasonal {
		gammas = []float64{0}
	}
	for _, a := range grid {
		for _, b := range grid {
			for _, g := range gammas {
				p := Params{Alpha: a, Beta: b, Gamma: g}
				var vals []float64
				var sse float64
				if seasonal {
					vals, sse = holtWinters(series, SeasonLength, p, steps)
				} else {
					vals, sse = holt(series, p, steps)
				}
				if sse < best.SSE {
					best.Values, best.SSE, best.Params = vals, sse, p
				}
			}
		}
	}
	if seasonal {
		best.Method = MethodHoltWinters
	} else {
		best.Method = MethodHolt
	}
	return best
}

// holtWinters runs additive Holt-Winters. The level is initialised one step
// before the first observation so that a purely linear series is fitted exactly.
func holtWinters(y []float64, m int, p Params, steps int) ([]float64, float64) {
	mean1 := mean(y[:m])
	mean2 := mean(y[m : 2*m])
	trend := (mean2 - mean1) / float64(m)
	level := mean1 - trend*float64(m+1)/2

	season := make([]float64, m)
	for i := 0; i < m; i++ {
		season[i] = y[i] - (level + float64(i+1)*trend)
	}

	var sse float64
	for t, obs := range y {
		s := season[t%m]
		pred := level + trend + s
		sse += (obs - pred) * (obs - pred)

		newLevel := p.Alpha*(obs-s) + (1-p.Alpha)*(level+trend)
		trend = p.Beta*(newLevel-level) + (1-p.Beta)*trend
		season[t%m] = p.Gamma*(obs-newLevel) + (1-p.Gamma)*s
		level = newLevel
	}

	n := len(y)
	out := make([]float64, steps)
	for h := 1; h <= steps; h++ {
		out[h-1] = level + float64(h)*trend + season[(n+h-1)%m]
	}
	return out, sse
}

func holt(y []float64, p Params, steps int) ([]float64, float64) {
	level := y[0]
	trend := y[1] - y[0]

	var sse float64
	for t := 1; t < len(y); t++ {
		pred := level + trend
		sse += (y[t] - pred) * (y[t] - pred)

		newLevel := p.Alpha*y[t] + (1-p.Alpha)*(level+trend)
		trend = p.Beta*(newLevel-level) + (1-p.Beta)*trend
		level = newLevel
	}

	out := make([]float64, steps)
	for h := 1; h <= steps; h++ {
		out[h-1] = level + float64(h)*trend
	}
	return out, sse
}

func mean(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
