package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"agriprice/internal/calculator"
	"agriprice/internal/model"
)

const (
	chartWidth  = 800
	chartHeight = 300
	chartPad    = 20
	maPeriod    = 12
)

// Chart is a price history projected onto a fixed SVG viewport.
type Chart struct {
	Width   int
	Height  int
	Price   string // polyline points
	Average string // polyline points of the moving average
	Min     float64
	Max     float64
	First   string
	Last    string
	Empty   bool
}

// BuildChart scales h into polyline coordinates. Higher prices sit nearer the top.
func BuildChart(h *model.PriceHistory) Chart {
	c := Chart{Width: chartWidth, Height: chartHeight}
	n := h.Len()
	if n == 0 {
		c.Empty = true
		return c
	}
	c.Min, c.Max = slices.Min(h.Prices), slices.Max(h.Prices)
	c.First, c.Last = h.Dates[0], h.Dates[n-1]
	c.Price = c.points(h.Prices)
	if ma, err := calculator.MovingAverage(h.Prices, maPeriod); err == nil {
		c.Average = c.points(ma)
	}
	return c
}

func (c Chart) points(values []float64) string {
	innerW := float64(c.Width - 2*chartPad)
	innerH := float64(c.Height - 2*chartPad)
	span := c.Max - c.Min

	var b strings.Builder
	for i, v := range values {
		x := float64(chartPad)
		if len(values) > 1 {
			x += innerW * float64(i) / float64(len(values)-1)
		}
		y := float64(chartPad) + innerH/2
		if span > 0 {
			y = float64(chartPad) + innerH*(c.Max-v)/span
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.1f,%.1f", x, y)
	}
	return b.String()
}
