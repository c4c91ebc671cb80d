package dashboard

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"agriprice/internal/collector"
	"agriprice/internal/model"
	"agriprice/internal/recorder"
)

// MaxMonths is the largest horizon the prediction form offers.
const MaxMonths = 12

const msgMonthsRange = "Months must be between 1 and 12"

//go:embed templates/*.html
var templateFS embed.FS

type card struct {
	Title string
	Value float64
}

type page struct {
	Overview   *collector.Overview
	Cards      []card
	Chart      Chart
	Months     int
	MaxMonths  int
	Prediction *collector.Prediction
	AsOf       string
}

// Server renders the dashboard.
type Server struct {
	app  *fiber.App
	col  *collector.Collector
	rec  recorder.Recorder
	tmpl *template.Template
	log  *zap.Logger
	now  func() time.Time
}

// NewServer parses the page templates and wires the routes.
func NewServer(col *collector.Collector, rec recorder.Recorder, log *zap.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"rupee": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
		"inc":   func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{col: col, rec: rec, tmpl: tmpl, log: log, now: time.Now}
	s.app = fiber.New(fiber.Config{
		AppName:               "agriprice-dashboard",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New())

	s.app.Get("/", s.handleIndex)
	s.app.Post("/predict", s.handlePredict)
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return s, nil
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("dashboard listening", zap.String("addr", addr), zap.String("backend", s.col.Fetcher.Name()))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleIndex(c *fiber.Ctx) error {
	ov := s.col.Overview(c.UserContext(), c.Query("commodity"))
	return s.render(c, fiber.StatusOK, s.newPage(ov, 1))
}

func (s *Server) handlePredict(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ov := s.col.Overview(ctx, c.FormValue("commodity"))

	months, err := strconv.Atoi(c.FormValue("months"))
	if err != nil || months < 1 || months > MaxMonths {
		p := s.newPage(ov, 1)
		p.Prediction = &collector.Prediction{Commodity: ov.Selected, Err: msgMonthsRange}
		return s.render(c, fiber.StatusBadRequest, p)
	}

	p := s.newPage(ov, months)
	if ov.Selected == "" {
		p.Prediction = &collector.Prediction{Months: months, Err: collector.MsgPredictionFailed}
		return s.render(c, fiber.StatusOK, p)
	}

	pred := s.col.Predict(ctx, ov.Selected, months)
	p.Prediction = pred
	s.record(c, pred)
	return s.render(c, fiber.StatusOK, p)
}

func (s *Server) record(c *fiber.Ctx, pred *collector.Prediction) {
	rec := &recorder.PredictionRecord{
		Commodity:   pred.Commodity,
		Months:      pred.Months,
		Err:         pred.Err,
		RequestedAt: s.now(),
	}
	for _, r := range pred.Rows {
		rec.Dates = append(rec.Dates, r.Date)
		rec.Predictions = append(rec.Predictions, r.Price)
	}
	if err := s.rec.RecordPrediction(c.UserContext(), rec); err != nil {
		s.log.Error("record prediction failed",
			zap.String("commodity", pred.Commodity),
			zap.Any("request_id", c.Locals("requestid")),
			zap.Error(err))
	}
}

func (s *Server) newPage(ov *collector.Overview, months int) *page {
	p := &page{
		Overview:  ov,
		Chart:     BuildChart(ov.History),
		Months:    months,
		MaxMonths: MaxMonths,
	}
	if ov.Stats != nil {
		p.Cards = []card{
			{"Current Price", ov.Stats.Current},
			{"Average Price", ov.Stats.Average},
			{"Highest Price", ov.Stats.Highest},
			{"Lowest Price", ov.Stats.Lowest},
		}
	}
	if n := ov.History.Len(); n > 0 {
		if last, err := time.Parse(model.DateLayout, ov.History.Dates[n-1]); err == nil {
			p.AsOf = fmt.Sprintf("%s (%s)", ov.History.Dates[n-1], humanize.RelTime(last, s.now(), "ago", "from now"))
		}
	}
	return p
}

func (s *Server) render(c *fiber.Ctx, status int, p *page) error {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", p); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code, msg := fiber.StatusInternalServerError, fiber.ErrInternalServerError.Message
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	s.log.Error("dashboard request failed",
		zap.Int("status", code),
		zap.String("path", c.Path()),
		zap.Any("request_id", c.Locals("requestid")),
		zap.Error(err))
	return c.Status(code).SendString(msg)
}
