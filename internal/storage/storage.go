// Package storage fetches raw spreadsheet objects from the configured backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tensorplex-labs/territory-ranker/internal/config"
)

var ErrNotFound = errors.New("object not found")

// Source returns the bytes stored under key.
type Source interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// NewSource builds the backend named by cfg.Backend: "s3", "file" or "http".
func NewSource(cfg *config.StorageEnvConfig) (Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	switch cfg.Backend {
	case "s3":
		return NewS3Source(cfg)
	case "file":
		return NewDirSource(cfg.DataDir)
	case "http":
		return NewHTTPSource(cfg)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

type timeoutSource struct {
	Source
	timeout time.Duration
}

// WithFetchTimeout bounds every Fetch on src. A non-positive timeout
// returns src unchanged.
func WithFetchTimeout(src Source, timeout time.Duration) Source {
	if timeout <= 0 {
		return src
	}
	return &timeoutSource{Source: src, timeout: timeout}
}

func (t *timeoutSource) Fetch(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Source.Fetch(ctx, key)
}
