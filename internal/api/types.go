package api

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tensorplex-labs/territory-ranker/internal/config"
	"github.com/tensorplex-labs/territory-ranker/internal/evaluator"
	"github.com/tensorplex-labs/territory-ranker/internal/territory"
)

const (
	DefaultServerHost = "0.0.0.0"
	DefaultServerPort = 8080
	DefaultBodyLimit  = 1024 * 1024 // 1MB
)

// Ranker is the part of the evaluator the API depends on.
type Ranker interface {
	Evaluate(ctx context.Context, req *evaluator.Request) (*evaluator.Response, error)
	LevelSpecs() []territory.LevelSpec
}

type Server struct {
	App     *fiber.App
	config  *config.ServerEnvConfig
	ranker  Ranker
	metrics *Metrics
}

// StdResponse represents the standardized response structure
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type LevelsResponse struct {
	Levels []territory.LevelSpec `json:"levels"`
}
