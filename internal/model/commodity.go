package model

import "time"

// DefaultCommodity is used by the API when a request does not name one.
const DefaultCommodity = "Wheat"

// DateLayout is the wire format for every date in the API.
const DateLayout = "2006-01-02"

// Stats is the per-commodity statistics record.
type Stats struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
}

// PriceHistory holds parallel sequences of dates and prices.
type PriceHistory struct {
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}

// Len returns the number of observations, or 0 if the sequences disagree.
func (h *PriceHistory) Len() int {
	if h == nil || len(h.Dates) != len(h.Prices) {
		return 0
	}
	return len(h.Dates)
}

// PricePoint is a single dated observation.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// Series is the full price history of one commodity, oldest first.
type Series struct {
	Commodity string
	Points    []PricePoint
}

// Prices extracts the price column.
func (s *Series) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Last returns the most recent observation.
func (s *Series) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Dataset is an ordered set of commodity series sharing one date index.
type Dataset struct {
	Series []Series
}

// Names returns the commodity names in dataset order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.Series))
	for i, s := range d.Series {
		names[i] = s.Commodity
	}
	return names
}
