package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/territory-ranker/internal/config"
)

// HTTPSource downloads objects from BaseURL/key, retrying transient failures.
type HTTPSource struct {
	baseURL string
	client  *retryablehttp.Client
}

func NewHTTPSource(cfg *config.StorageEnvConfig) (*HTTPSource, error) {
	if cfg.HTTPBaseURL == "" {
		return nil, fmt.Errorf("http source url is required")
	}
	if _, err := url.Parse(cfg.HTTPBaseURL); err != nil {
		return nil, fmt.Errorf("http source url: %w", err)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.HTTPRetryMax
	client.HTTPClient.Timeout = cfg.HTTPTimeout
	client.Logger = zerologAdapter{log.Logger}

	return &HTTPSource{
		baseURL: strings.TrimRight(cfg.HTTPBaseURL, "/"),
		client:  client,
	}, nil
}

func (h *HTTPSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	segments := strings.Split(strings.Trim(key, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	target := h.baseURL + "/" + strings.Join(segments, "/")
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("url", target).Msg("http source request failed")
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", target, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s status %d", target, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	return data, nil
}

// zerologAdapter satisfies retryablehttp.LeveledLogger.
type zerologAdapter struct {
	l zerolog.Logger
}

func (z zerologAdapter) Error(msg string, kv ...interface{}) { z.l.Error().Fields(kv).Msg(msg) }
func (z zerologAdapter) Info(msg string, kv ...interface{})  { z.l.Info().Fields(kv).Msg(msg) }
func (z zerologAdapter) Debug(msg string, kv ...interface{}) { z.l.Debug().Fields(kv).Msg(msg) }
func (z zerologAdapter) Warn(msg string, kv ...interface{})  { z.l.Warn().Fields(kv).Msg(msg) }
