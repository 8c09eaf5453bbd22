// Package client talks to a running ranking server.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sethvargo/go-envconfig"

	"github.com/tensorplex-labs/territory-ranker/internal/api"
	"github.com/tensorplex-labs/territory-ranker/internal/evaluator"
	"github.com/tensorplex-labs/territory-ranker/internal/territory"
)

type ClientEnvConfig struct {
	URL        string        `env:"RANKER_URL, default=http://localhost:8080"`
	Timeout    time.Duration `env:"RANKER_CLIENT_TIMEOUT, default=30s"`
	RetryCount int           `env:"RANKER_CLIENT_RETRIES, default=2"`
}

func LoadClientConfig(ctx context.Context) (*ClientEnvConfig, error) {
	var cfg ClientEnvConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("process client environment: %w", err)
	}
	return &cfg, nil
}

type RankerClientInterface interface {
	Rank(ctx context.Context, req *evaluator.Request) (*evaluator.Response, error)
	Levels(ctx context.Context) ([]territory.LevelSpec, error)
	Health(ctx context.Context) error
}

type RankerClient struct {
	cfg    *ClientEnvConfig
	client *resty.Client
}

func NewRankerClient(cfg *ClientEnvConfig) (*RankerClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("ranker url cannot be empty")
	}

	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)

	return &RankerClient{
		cfg:    cfg,
		client: client,
	}, nil
}

func (c *RankerClient) Rank(ctx context.Context, req *evaluator.Request) (*evaluator.Response, error) {
	if req == nil {
		req = &evaluator.Request{}
	}
	var out api.StdResponse[evaluator.Response]
	var failure api.StdResponse[map[string]any]
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&failure).
		Post("/rank")
	if err != nil {
		log.Error().Err(err).Msg("rank request failed")
		return nil, fmt.Errorf("rank: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("rank", resp, failure.Error)
	}
	return &out.Body, nil
}

func (c *RankerClient) Levels(ctx context.Context) ([]territory.LevelSpec, error) {
	var out api.StdResponse[api.LevelsResponse]
	var failure api.StdResponse[map[string]any]
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&failure).
		Get("/levels")
	if err != nil {
		log.Error().Err(err).Msg("levels request failed")
		return nil, fmt.Errorf("levels: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("levels", resp, failure.Error)
	}
	return out.Body.Levels, nil
}

func (c *RankerClient) Health(ctx context.Context) error {
	resp, err := c.client.R().SetContext(ctx).Get("/health")
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	if resp.IsError() {
		return statusError("health", resp, nil)
	}
	return nil
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s status %d: %s", e.Op, e.Status, e.Message)
}

func statusError(op string, resp *resty.Response, serverMsg *string) error {
	msg := resp.String()
	if serverMsg != nil {
		msg = *serverMsg
	}
	log.Error().Int("status", resp.StatusCode()).Str("op", op).Str("error", msg).Msg("ranker returned non-2xx")
	return &StatusError{Op: op, Status: resp.StatusCode(), Message: msg}
}
