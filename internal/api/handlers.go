package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"agriprice/internal/calculator"
	"agriprice/internal/forecast"
	"agriprice/internal/model"
	"agriprice/internal/store"
)

func (s *Server) handleCommodities(c *fiber.Ctx) error {
	names, err := s.store.Commodities(c.UserContext())
	if err != nil {
		return fmt.Errorf("list commodities: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(names)
}

func (s *Server) handleData(c *fiber.Ctx) error {
	series, err := s.series(c)
	if err != nil {
		return err
	}
	hist := model.PriceHistory{
		Dates:  make([]string, len(series.Points)),
		Prices: make([]float64, len(series.Points)),
	}
	for i, p := range series.Points {
		hist.Dates[i] = p.Date.Format(model.DateLayout)
		hist.Prices[i] = calculator.Round2(p.Price)
	}
	return c.JSON(hist)
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	series, err := s.series(c)
	if err != nil {
		return err
	}
	stats, err := calculator.Summarize(series.Prices())
	if errors.Is(err, calculator.ErrEmptySeries) {
		return fiber.NewError(fiber.StatusNotFound, "no price data for "+series.Commodity)
	}
	if err != nil {
		return fmt.Errorf("summarize %s: %w", series.Commodity, err)
	}
	return c.JSON(stats)
}

// predictBody mirrors model.PredictionRequest with optional fields so defaults can apply.
// Months may arrive as a number or a numeric string.
type predictBody struct {
	Months    json.RawMessage `json:"months"`
	Commodity string          `json:"commodity"`
}

// parseMonths converts the raw months field. Fractional numbers truncate toward zero.
func parseMonths(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 1, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, err
	}
	switch m := v.(type) {
	case float64:
		if math.IsInf(m, 0) || math.Abs(m) > math.MaxInt32 {
			return 0, fmt.Errorf("months out of range: %v", m)
		}
		return int(m), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(m))
	default:
		return 0, fmt.Errorf("months must be a number, got %T", v)
	}
}

func (s *Server) handlePredict(c *fiber.Ctx) error {
	var body predictBody
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	months, err := parseMonths(body.Months)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "months must be an integer")
	}
	req := model.PredictionRequest{Months: months, Commodity: body.Commodity}
	if req.Commodity == "" {
		req.Commodity = s.opts.DefaultCommodity
	}
	if req.Months < 1 || req.Months > s.opts.MaxHorizon {
		return fiber.NewError(fiber.StatusBadRequest,
			fmt.Sprintf("months must be between 1 and %d", s.opts.MaxHorizon))
	}

	series, err := s.loadSeries(c, req.Commodity)
	if err != nil {
		return err
	}
	last, ok := series.Last()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no price data for "+req.Commodity)
	}

	key := cacheKey{
		commodity: req.Commodity,
		months:    req.Months,
		last:      last.Date.Format(model.DateLayout),
		points:    len(series.Points),
	}
	if resp, ok := s.cache.Get(key); ok {
		return c.JSON(resp)
	}

	res, err := forecast.Forecast(series.Prices(), req.Months)
	if err != nil {
		return fmt.Errorf("forecast %s: %w", req.Commodity, err)
	}

	resp := &model.PredictionResponse{
		Dates:       make([]string, req.Months),
		Predictions: calculator.RoundAll(res.Values),
	}
	for i, d := range forecast.FutureMonthEnds(last.Date, req.Months) {
		resp.Dates[i] = d.Format(model.DateLayout)
	}
	s.cache.Add(key, resp)

	s.log.Info("forecast computed",
		zap.String("commodity", req.Commodity),
		zap.Int("months", req.Months),
		zap.String("method", string(res.Method)),
		zap.Float64("sse", res.SSE),
		zap.Any("request_id", c.Locals("requestid")),
	)
	return c.JSON(resp)
}

func (s *Server) series(c *fiber.Ctx) (*model.Series, error) {
	return s.loadSeries(c, c.Query("commodity", s.opts.DefaultCommodity))
}

func (s *Server) loadSeries(c *fiber.Ctx, commodity string) (*model.Series, error) {
	series, err := s.store.Series(c.UserContext(), commodity)
	if err != nil {
		if errors.Is(err, store.ErrUnknownCommodity) {
			return nil, fiber.NewError(fiber.StatusNotFound, "unknown commodity: "+commodity)
		}
		return nil, fmt.Errorf("load series %s: %w", commodity, err)
	}
	return series, nil
}
