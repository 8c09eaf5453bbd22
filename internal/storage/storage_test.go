package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/territory-ranker/internal/config"
)

func TestNewSource(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewSource(nil)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewSource(&config.StorageEnvConfig{Backend: "ftp"})
		assert.Error(t, err)
	})

	t.Run("file backend", func(t *testing.T) {
		src, err := NewSource(&config.StorageEnvConfig{Backend: "file", DataDir: t.TempDir()})
		require.NoError(t, err)
		assert.IsType(t, &DirSource{}, src)
	})

	t.Run("s3 backend", func(t *testing.T) {
		src, err := NewSource(&config.StorageEnvConfig{Backend: "s3", S3Bucket: "b", S3Region: "us-west-2"})
		require.NoError(t, err)
		assert.IsType(t, &S3Source{}, src)
	})

	t.Run("http backend needs a url", func(t *testing.T) {
		_, err := NewSource(&config.StorageEnvConfig{Backend: "http"})
		assert.Error(t, err)
	})
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "regions.xlsx"), []byte("payload"), 0o600))

	src, err := NewDirSource(root)
	require.NoError(t, err)

	data, err := src.Fetch(context.Background(), "regions.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	_, err = src.Fetch(context.Background(), "missing.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = src.Fetch(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx, "regions.xlsx")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewDirSource(filepath.Join(root, "regions.xlsx"))
	assert.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/2023/communes.xlsx":
			_, _ = w.Write([]byte("xlsx-bytes"))
		case "/data/flaky.xlsx":
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("second time lucky"))
		case "/data/broken.xlsx":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	src, err := NewHTTPSource(&config.StorageEnvConfig{
		HTTPBaseURL:  ts.URL + "/data/",
		HTTPRetryMax: 2,
		HTTPTimeout:  5 * time.Second,
	})
	require.NoError(t, err)
	src.client.RetryWaitMin = time.Millisecond
	src.client.RetryWaitMax = 5 * time.Millisecond

	t.Run("nested key", func(t *testing.T) {
		data, err := src.Fetch(context.Background(), "2023/communes.xlsx")
		require.NoError(t, err)
		assert.Equal(t, "xlsx-bytes", string(data))
	})

	t.Run("retries transient failures", func(t *testing.T) {
		data, err := src.Fetch(context.Background(), "flaky.xlsx")
		require.NoError(t, err)
		assert.Equal(t, "second time lucky", string(data))
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := src.Fetch(context.Background(), "nope.xlsx")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("gives up after retries", func(t *testing.T) {
		_, err := src.Fetch(context.Background(), "broken.xlsx")
		assert.Error(t, err)
	})
}

func TestS3Source(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/financialdataexcelfiles/donnees_region_2023.xlsx":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("region-sheet"))
		default:
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
		}
	}))
	defer ts.Close()

	src, err := NewS3Source(&config.StorageEnvConfig{
		S3Bucket:   "financialdataexcelfiles",
		S3Region:   "us-west-2",
		S3Endpoint: ts.URL,
	})
	require.NoError(t, err)

	data, err := src.Fetch(context.Background(), "donnees_region_2023.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "region-sheet", string(data))

	_, err = src.Fetch(context.Background(), "absent.xlsx")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = NewS3Source(&config.StorageEnvConfig{})
	assert.Error(t, err)
}

type deadlineSource struct {
	deadline time.Time
	ok       bool
}

func (d *deadlineSource) Fetch(ctx context.Context, _ string) ([]byte, error) {
	d.deadline, d.ok = ctx.Deadline()
	return []byte("x"), nil
}

func TestWithFetchTimeout(t *testing.T) {
	inner := &deadlineSource{}
	assert.Same(t, Source(inner), WithFetchTimeout(inner, 0))

	src := WithFetchTimeout(inner, time.Minute)
	before := time.Now()
	data, err := src.Fetch(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
	require.True(t, inner.ok)
	assert.WithinDuration(t, before.Add(time.Minute), inner.deadline, 5*time.Second)
}
