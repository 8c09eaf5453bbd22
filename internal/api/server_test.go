package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/territory-ranker/internal/evaluator"
	"github.com/tensorplex-labs/territory-ranker/internal/scoring"
	"github.com/tensorplex-labs/territory-ranker/internal/storage"
	"github.com/tensorplex-labs/territory-ranker/internal/territory"
)

type fakeRanker struct {
	resp *evaluator.Response
	err  error
	last *evaluator.Request
}

func (f *fakeRanker) Evaluate(_ context.Context, req *evaluator.Request) (*evaluator.Response, error) {
	f.last = req
	return f.resp, f.err
}

func (f *fakeRanker) LevelSpecs() []territory.LevelSpec {
	specs := territory.DefaultLevelSpecs()
	return []territory.LevelSpec{specs[territory.Communes], specs[territory.Departements], specs[territory.Regions]}
}

func sampleResponse() *evaluator.Response {
	return &evaluator.Response{
		Communes: &evaluator.LevelResult{
			Level:     territory.Communes,
			KeyColumn: "inom",
			Criteria:  []string{"fprod"},
			Ranking: []evaluator.RankedTerritory{
				{Position: 1, Name: "AMIENS", Score: 1, Criteria: map[string]float64{"fprod": 3}},
				{Position: 2, Name: "ROUEN", Score: -1, Criteria: map[string]float64{"fprod": 2}},
			},
		},
	}
}

func newTestServer(t *testing.T, ranker Ranker) *Server {
	t.Helper()
	s, err := NewServer(nil, ranker, prometheus.NewRegistry())
	require.NoError(t, err)
	return s
}

func postRank(t *testing.T, s *Server, body string) (*http.Response, StdResponse[evaluator.Response]) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rank", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out StdResponse[evaluator.Response]
	require.NoError(t, sonic.Unmarshal(raw, &out), string(raw))
	return resp, out
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, nil, nil)
	assert.Error(t, err)

	s, err := NewServer(nil, &fakeRanker{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, s.config.Port)
	assert.Equal(t, DefaultBodyLimit, s.config.BodySizeLimit)
}

func TestHealthAndLevels(t *testing.T) {
	s := newTestServer(t, &fakeRanker{})

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = s.App.Test(httptest.NewRequest(http.MethodGet, "/levels", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out StdResponse[LevelsResponse]
	require.NoError(t, sonic.Unmarshal(raw, &out))
	assert.Nil(t, out.Error)
	require.Len(t, out.Body.Levels, 3)
	assert.Equal(t, territory.Communes, out.Body.Levels[0].Level)
	assert.Equal(t, "inom", out.Body.Levels[0].KeyColumn)
}

func TestRank(t *testing.T) {
	t.Run("returns rankings", func(t *testing.T) {
		ranker := &fakeRanker{resp: sampleResponse()}
		s := newTestServer(t, ranker)

		resp, out := postRank(t, s, `{"selected_communes":["amiens","rouen"],"levels":["communes"],"top":2}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Nil(t, out.Error)
		require.NotNil(t, out.Body.Communes)
		assert.Equal(t, "AMIENS", out.Body.Communes.Ranking[0].Name)
		assert.Nil(t, out.Body.Regions)

		require.NotNil(t, ranker.last)
		assert.Equal(t, []string{"amiens", "rouen"}, ranker.last.SelectedCommunes)
		assert.Equal(t, 2, ranker.last.Top)
	})

	t.Run("empty body ranks everything", func(t *testing.T) {
		ranker := &fakeRanker{resp: sampleResponse()}
		s := newTestServer(t, ranker)

		resp, _ := postRank(t, s, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, ranker.last)
		assert.Empty(t, ranker.last.Levels)
	})

	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed json", `{"levels":`, nil, http.StatusBadRequest},
		{"unknown level", `{"levels":["cantons"]}`, nil, http.StatusBadRequest},
		{"negative top", `{"top":-1}`, nil, http.StatusBadRequest},
		{"negative weight", `{"weights":[0.5,-0.1]}`, nil, http.StatusBadRequest},
		{"threshold out of range", `{"thresholds":{"veto":1.5}}`, nil, http.StatusBadRequest},
		{"missing file", `{}`, &evaluator.LevelError{Level: territory.Regions, Err: storage.ErrNotFound}, http.StatusNotFound},
		{"bad weights", `{}`, fmt.Errorf("communes: %w", scoring.ErrMalformedWeights), http.StatusUnprocessableEntity},
		{"missing columns", `{}`, territory.ErrMissingColumns, http.StatusUnprocessableEntity},
		{"timeout", `{}`, context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"internal", `{}`, fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t, &fakeRanker{resp: sampleResponse(), err: tc.err})
			resp, out := postRank(t, s, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			require.NotNil(t, out.Error)
			assert.NotEmpty(t, *out.Error)
		})
	}
}

func TestZstdMiddleware(t *testing.T) {
	ranker := &fakeRanker{resp: sampleResponse()}
	s := newTestServer(t, ranker)

	encoder, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := encoder.EncodeAll([]byte(`{"levels":["communes"]}`), nil)
	require.NoError(t, encoder.Close())

	req := httptest.NewRequest(http.MethodPost, "/rank", bytes.NewReader(compressed))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "zstd")
	req.Header.Set("Accept-Encoding", "zstd")
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "zstd", resp.Header.Get("Content-Encoding"))
	require.NotNil(t, ranker.last)
	assert.Equal(t, []string{"communes"}, ranker.last.Levels)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	decoder, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer decoder.Close()
	plain, err := decoder.DecodeAll(raw, nil)
	require.NoError(t, err)

	var out StdResponse[evaluator.Response]
	require.NoError(t, sonic.Unmarshal(plain, &out))
	assert.Equal(t, "AMIENS", out.Body.Communes.Ranking[0].Name)
}

func TestZstdMiddlewareRejectsGarbage(t *testing.T) {
	s := newTestServer(t, &fakeRanker{resp: sampleResponse()})

	req := httptest.NewRequest(http.MethodPost, "/rank", strings.NewReader("not zstd at all"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "zstd")
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeRanker{resp: sampleResponse()})
	postRank(t, s, `{}`)

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, MetricRankingsTotal+`{outcome="ok"} 1`)
	assert.Contains(t, body, MetricHTTPRequestsTotal)
	assert.Contains(t, body, MetricRankedEntities)
}
