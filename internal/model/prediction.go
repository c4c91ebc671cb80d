package model

// PredictionRequest asks for a forecast over the next Months months.
type PredictionRequest struct {
	Months    int    `json:"months"`
	Commodity string `json:"commodity"`
}

// PredictionResponse holds parallel sequences of future dates and predicted prices.
type PredictionResponse struct {
	Dates       []string  `json:"dates"`
	Predictions []float64 `json:"predictions"`
}

// PredictedPrice is one row of a prediction, used for rendering.
type PredictedPrice struct {
	Date  string
	Price float64
}

// Rows zips the response into ordered rows. Extra entries on either side are dropped.
func (p *PredictionResponse) Rows() []PredictedPrice {
	if p == nil {
		return nil
	}
	n := len(p.Dates)
	if len(p.Predictions) < n {
		n = len(p.Predictions)
	}
	rows := make([]PredictedPrice, n)
	for i := 0; i < n; i++ {
		rows[i] = PredictedPrice{Date: p.Dates[i], Price: p.Predictions[i]}
	}
	return rows
}
