package api

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"agriprice/internal/model"
	"agriprice/internal/store"
)

// Options tune request defaults and limits.
type Options struct {
	DefaultCommodity  string
	MaxHorizon        int
	ForecastCacheSize int
}

// cacheKey pins a forecast to the series it was computed from, so a replaced
// dataset never serves stale entries.
type cacheKey struct {
	commodity string
	months    int
	last      string
	points    int
}

// Server serves the prices API.
type Server struct {
	app   *fiber.App
	store store.Store
	cache *lru.Cache[cacheKey, *model.PredictionResponse]
	opts  Options
	log   *zap.Logger
}

// NewServer wires routes and middleware around st.
func NewServer(st store.Store, opts Options, log *zap.Logger) (*Server, error) {
	if opts.DefaultCommodity == "" {
		opts.DefaultCommodity = model.DefaultCommodity
	}
	if opts.MaxHorizon < 1 {
		return nil, fmt.Errorf("max horizon must be positive, got %d", opts.MaxHorizon)
	}
	cache, err := lru.New[cacheKey, *model.PredictionResponse](opts.ForecastCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create forecast cache: %w", err)
	}

	s := &Server{store: st, cache: cache, opts: opts, log: log}
	s.app = fiber.New(fiber.Config{
		AppName:               "agriprice-api",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(cors.New())
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.app.Group("/api")
	api.Get("/commodities", s.handleCommodities)
	api.Get("/data", s.handleData)
	api.Get("/stats", s.handleStats)
	api.Post("/predict", s.handlePredict)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("prices API listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code, msg = fe.Code, fe.Message
	case errors.Is(err, store.ErrUnknownCommodity):
		code, msg = fiber.StatusNotFound, err.Error()
	}

	fields := []zap.Field{
		zap.Int("status", code),
		zap.String("path", c.Path()),
		zap.Any("request_id", c.Locals("requestid")),
		zap.Error(err),
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("request failed", fields...)
	} else {
		s.log.Warn("request rejected", fields...)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
