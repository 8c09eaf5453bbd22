package client

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/territory-ranker/internal/api"
	"github.com/tensorplex-labs/territory-ranker/internal/evaluator"
	"github.com/tensorplex-labs/territory-ranker/internal/storage"
	"github.com/tensorplex-labs/territory-ranker/internal/territory"
)

type stubRanker struct {
	err  error
	last *evaluator.Request
}

func (s *stubRanker) Evaluate(_ context.Context, req *evaluator.Request) (*evaluator.Response, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &evaluator.Response{
		Regions: &evaluator.LevelResult{
			Level:     territory.Regions,
			KeyColumn: "lbudg",
			Ranking: []evaluator.RankedTerritory{
				{Position: 1, Name: "REG BRETAGNE", Score: 0.75},
			},
		},
	}, nil
}

func (s *stubRanker) LevelSpecs() []territory.LevelSpec {
	return []territory.LevelSpec{territory.DefaultLevelSpecs()[territory.Regions]}
}

// serve runs a real fiber app on a loopback listener.
func serve(t *testing.T, ranker api.Ranker) *RankerClient {
	t.Helper()
	s, err := api.NewServer(nil, ranker, prometheus.NewRegistry())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = s.App.Listener(ln) }()
	t.Cleanup(func() { _ = s.App.Shutdown() })

	c, err := NewRankerClient(&ClientEnvConfig{URL: "http://" + ln.Addr().String(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestNewRankerClient(t *testing.T) {
	_, err := NewRankerClient(nil)
	assert.Error(t, err)

	_, err = NewRankerClient(&ClientEnvConfig{})
	assert.Error(t, err)
}

func TestLoadClientConfig(t *testing.T) {
	t.Setenv("RANKER_URL", "http://ranker:9000")
	t.Setenv("RANKER_CLIENT_TIMEOUT", "3s")

	cfg, err := LoadClientConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://ranker:9000", cfg.URL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 2, cfg.RetryCount)
}

func TestRank(t *testing.T) {
	ranker := &stubRanker{}
	c := serve(t, ranker)

	resp, err := c.Rank(context.Background(), &evaluator.Request{
		Levels:          []string{"regions"},
		SelectedRegions: []string{"bretagne"},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Regions)
	assert.Equal(t, "REG BRETAGNE", resp.Regions.Ranking[0].Name)
	assert.Nil(t, resp.Communes)

	require.NotNil(t, ranker.last)
	assert.Equal(t, []string{"bretagne"}, ranker.last.SelectedRegions)
}

func TestRankServerError(t *testing.T) {
	c := serve(t, &stubRanker{err: &evaluator.LevelError{Level: territory.Regions, Err: storage.ErrNotFound}})

	_, err := c.Rank(context.Background(), nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Status)
	assert.Contains(t, statusErr.Message, "regions")
}

func TestLevelsAndHealth(t *testing.T) {
	c := serve(t, &stubRanker{})

	levels, err := c.Levels(context.Background())
	require.NoError(t, err)
	require.Len(t, levels, 1)
	assert.Equal(t, territory.Regions, levels[0].Level)

	assert.NoError(t, c.Health(context.Background()))
}

func TestRankDecodesEnvelope(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rank" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := sonic.Marshal(api.StdResponse[evaluator.Response]{
			Body: evaluator.Response{Communes: &evaluator.LevelResult{Level: territory.Communes}},
		})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer ts.Close()

	c, err := NewRankerClient(&ClientEnvConfig{URL: ts.URL, Timeout: time.Second})
	require.NoError(t, err)
	resp, err := c.Rank(context.Background(), &evaluator.Request{})
	require.NoError(t, err)
	require.NotNil(t, resp.Communes)
	assert.Equal(t, territory.Communes, resp.Communes.Level)
}
