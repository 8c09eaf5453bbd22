// Package api serves territory rankings over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/territory-ranker/internal/config"
	"github.com/tensorplex-labs/territory-ranker/internal/evaluator"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewServer builds the fiber app and registers every route. A nil registry
// gets a fresh one so repeated servers in one process do not collide.
func NewServer(serverConfig *config.ServerEnvConfig, ranker Ranker, registry *prometheus.Registry) (*Server, error) {
	if ranker == nil {
		return nil, fmt.Errorf("ranker cannot be nil")
	}
	if serverConfig == nil {
		serverConfig = &config.ServerEnvConfig{
			Address:       DefaultServerHost,
			Port:          DefaultServerPort,
			BodySizeLimit: DefaultBodyLimit,
		}
	}
	if serverConfig.BodySizeLimit <= 0 {
		serverConfig.BodySizeLimit = DefaultBodyLimit
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	metrics := NewMetrics()
	if err := metrics.Register(registry); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	log.Info().
		Any("serverConfig", serverConfig).
		Msg("Server configuration loaded")

	app := fiber.New(fiber.Config{
		Prefork:               false,
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrHandler,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		BodyLimit:             serverConfig.BodySizeLimit,
	})

	app.Use(recover.New()) // add panic recovery
	app.Use(MetricsMiddleware(metrics))
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(ZstdMiddleware([]string{"/health", "/metrics"}))

	server := &Server{
		App:     app,
		config:  serverConfig,
		ranker:  ranker,
		metrics: metrics,
	}

	app.Get("/health", server.handleHealth)
	app.Get("/levels", server.handleLevels)
	app.Post("/rank", server.handleRank)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return server, nil
}

func fiberErrHandler(ctx *fiber.Ctx, err error) error {
	code := statusFor(err)

	log.Error().
		Err(err).
		Int("status_code", code).
		Str("path", ctx.Path()).
		Str("method", ctx.Method()).
		Msg("Fiber error handler triggered")

	return ctx.Status(code).JSON(createResponse(map[string]any{}, err))
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(createResponse(HealthResponse{Status: "ok"}, nil))
}

func (s *Server) handleLevels(c *fiber.Ctx) error {
	return c.JSON(createResponse(LevelsResponse{Levels: s.ranker.LevelSpecs()}, nil))
}

func (s *Server) handleRank(c *fiber.Ctx) error {
	var req evaluator.Request
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			log.Error().Err(err).Str("route", "/rank").Msg("Failed to parse request body")
			return c.Status(fiber.StatusBadRequest).JSON(createResponse(map[string]any{}, err))
		}
	}

	if err := validate.Struct(&req); err != nil {
		log.Warn().Err(err).Str("route", "/rank").Msg("Rejected invalid ranking request")
		return c.Status(fiber.StatusBadRequest).JSON(createResponse(map[string]any{}, err))
	}

	resp, err := s.ranker.Evaluate(c.UserContext(), &req)
	if err != nil {
		code := statusFor(err)
		outcome := "error"
		if code < fiber.StatusInternalServerError {
			outcome = "rejected"
		}
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
		}
		s.metrics.ObserveRanking(outcome)
		log.Error().Err(err).Int("status_code", code).Str("route", "/rank").Msg("Ranking failed")
		return c.Status(code).JSON(createResponse(map[string]any{}, err))
	}

	s.metrics.ObserveRanking("ok")
	for _, res := range []*evaluator.LevelResult{resp.Communes, resp.Departements, resp.Regions} {
		if res != nil {
			s.metrics.ObserveLevel(string(res.Level), len(res.Ranking))
		}
	}
	return c.JSON(createResponse(resp, nil))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.Port)
	log.Info().Str("addr", addr).Msg("Starting ranking server")
	return s.App.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.App.ShutdownWithContext(ctx)
}
