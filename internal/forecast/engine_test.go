package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast_LinearTrendContinues(t *testing.T) {
	series := make([]float64, 36)
	for i := range series {
		series[i] = 5 + 2*float64(i)
	}
	res, err := Forecast(series, 4)
	require.NoError(t, err)
	assert.Equal(t, MethodHoltWinters, res.Method)
	require.Len(t, res.Values, 4)
	for h, v := range res.Values {
		assert.InDelta(t, 5+2*float64(36+h), v, 1e-6, "step %d", h+1)
	}
}

func TestForecast_SeasonalPatternRepeats(t *testing.T) {
	series := make([]float64, 48)
	for i := range series {
		series[i] = 50 + 10*math.Sin(2*math.Pi*float64(i)/SeasonLength)
	}
	res, err := Forecast(series, 12)
	require.NoError(t, err)
	for h, v := range res.Values {
		want := 50 + 10*math.Sin(2*math.Pi*float64(48+h)/SeasonLength)
		assert.InDelta(t, want, v, 1e-6, "step %d", h+1)
	}
}

func TestForecast_ShortSeriesUsesHolt(t *testing.T) {
	res, err := Forecast([]float64{10, 12, 14, 16}, 2)
	require.NoError(t, err)
	assert.Equal(t, MethodHolt, res.Method)
	assert.InDelta(t, 18, res.Values[0], 1e-9)
	assert.InDelta(t, 20, res.Values[1], 1e-9)
}

func TestForecast_SinglePointIsFlat(t *testing.T) {
	res, err := Forecast([]float64{7.5}, 3)
	require.NoError(t, err)
	assert.Equal(t, MethodFlat, res.Method)
	assert.Equal(t, []float64{7.5, 7.5, 7.5}, res.Values)
}

func TestForecast_FloorsAtZero(t *testing.T) {
	res, err := Forecast([]float64{30, 20, 10}, 3)
	require.NoError(t, err)
	for _, v := range res.Values {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestForecast_InvalidInput(t *testing.T) {
	_, err := Forecast(nil, 1)
	assert.ErrorIs(t, err, ErrEmptySeries)
	_, err = Forecast([]float64{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidSteps)
}

func TestFutureMonthEnds(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		n    int
		want []string
	}{
		{
			name: "from month end",
			last: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			n:    3,
			want: []string{"2024-02-29", "2024-03-31", "2024-04-30"},
		},
		{
			name: "mid month",
			last: time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
			n:    2,
			want: []string{"2024-11-30", "2024-12-31"},
		},
		{
			name: "zero",
			last: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			n:    0,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, d := range FutureMonthEnds(tt.last, tt.n) {
				got = append(got, d.Format("2006-01-02"))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
