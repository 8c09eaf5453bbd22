// Package evaluator ranks every requested territorial level: it fetches each
// level's spreadsheet, builds its criteria table and runs the outranking
// pipeline, one goroutine per level.
package evaluator

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tensorplex-labs/territory-ranker/internal/scoring"
	"github.com/tensorplex-labs/territory-ranker/internal/sheet"
	"github.com/tensorplex-labs/territory-ranker/internal/storage"
	"github.com/tensorplex-labs/territory-ranker/internal/territory"
	"github.com/tensorplex-labs/territory-ranker/internal/utils/redis"
)

const cacheKeyPrefix = "territory-ranker:ranking:"

type Evaluator struct {
	source           storage.Source
	specs            map[territory.Level]territory.LevelSpec
	thresholds       scoring.Thresholds
	degeneratePolicy scoring.DegeneratePolicy
	timeout          time.Duration
	cache            redis.RedisInterface
	cacheTTL         time.Duration
}

type EvaluatorOption func(*Evaluator)

func WithLevelSpecs(specs map[territory.Level]territory.LevelSpec) EvaluatorOption {
	return func(e *Evaluator) {
		e.specs = specs
	}
}

func WithThresholds(thresholds scoring.Thresholds) EvaluatorOption {
	return func(e *Evaluator) {
		e.thresholds = thresholds
	}
}

func WithDegeneratePolicy(policy scoring.DegeneratePolicy) EvaluatorOption {
	return func(e *Evaluator) {
		e.degeneratePolicy = policy
	}
}

// WithTimeout bounds a whole Evaluate call, all levels included.
func WithTimeout(timeout time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		e.timeout = timeout
	}
}

func WithCache(cache redis.RedisInterface, ttl time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		e.cache = cache
		e.cacheTTL = ttl
	}
}

func NewEvaluator(source storage.Source, opts ...EvaluatorOption) (*Evaluator, error) {
	if source == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}
	e := &Evaluator{
		source:           source,
		specs:            territory.DefaultLevelSpecs(),
		thresholds:       scoring.DefaultThresholds(),
		degeneratePolicy: scoring.DegenerateAsTie,
		timeout:          30 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.thresholds.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// LevelSpecs returns the level definitions in response order.
func (e *Evaluator) LevelSpecs() []territory.LevelSpec {
	out := make([]territory.LevelSpec, 0, len(e.specs))
	for _, level := range territory.AllLevels {
		if spec, ok := e.specs[level]; ok {
			out = append(out, spec)
		}
	}
	return out
}

func (e *Evaluator) Evaluate(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		req = &Request{}
	}
	levels, err := req.levels()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cacheKey := e.cacheKey(req)
	if cached := e.lookup(ctx, cacheKey); cached != nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("serving ranking from cache")
		return cached, nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	results := make([]*LevelResult, len(levels))
	g, gctx := errgroup.WithContext(ctx)
	for i, level := range levels {
		g.Go(func() error {
			res, err := e.rankLevel(gctx, level, req)
			if err != nil {
				return &LevelError{Level: level, Err: err}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("ranking request failed")
		return nil, err
	}

	resp := &Response{}
	for _, res := range results {
		resp.set(res)
	}

	e.store(ctx, cacheKey, resp)
	log.Info().Int("levels", len(levels)).Dur("elapsed", time.Since(start)).Msg("ranking request completed")
	return resp, nil
}

func (e *Evaluator) rankLevel(ctx context.Context, level territory.Level, req *Request) (*LevelResult, error) {
	spec, ok := e.specs[level]
	if !ok {
		return nil, fmt.Errorf("level is not configured")
	}

	data, err := e.source.Fetch(ctx, spec.File)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", spec.File, err)
	}

	s, err := sheet.ReadXLSX(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", spec.File, err)
	}

	table, report, err := territory.BuildTable(s, spec, req.selection(level))
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("level", string(level)).
		Int("rows", report.Rows).
		Int("kept", table.Len()).
		Int("droppedMissing", report.DroppedMissing).
		Int("droppedDuplicate", report.DroppedDuplicate).
		Strs("unmatched", report.Unmatched).
		Msg("built criteria table")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	weights := spec.Weights
	if len(req.Weights) > 0 {
		weights = req.Weights
	}
	thresholds := req.Thresholds.apply(e.thresholds)

	pipeline := scoring.OutrankingPipeline(
		scoring.WithWeights(weights),
		scoring.WithThresholds(thresholds),
		scoring.WithDegeneratePolicy(e.degeneratePolicy),
	)
	ranked, err := pipeline.Evaluate(table)
	if err != nil {
		return nil, err
	}
	if req.Top > 0 {
		ranked = ranked.Top(req.Top)
	}

	return toLevelResult(level, ranked, report), nil
}

func (e *Evaluator) cacheKey(req *Request) string {
	if e.cache == nil {
		return ""
	}
	payload, err := sonic.ConfigStd.Marshal(struct {
		Request    *Request                                `json:"request"`
		Specs      map[territory.Level]territory.LevelSpec `json:"specs"`
		Thresholds scoring.Thresholds                      `json:"thresholds"`
		Policy     string                                  `json:"policy"`
	}{req, e.specs, e.thresholds, e.degeneratePolicy.String()})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

func (e *Evaluator) lookup(ctx context.Context, key string) *Response {
	if e.cache == nil || key == "" {
		return nil
	}
	raw, err := e.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Msg("ranking cache lookup failed")
		return nil
	}
	if raw == "" {
		return nil
	}
	var resp Response
	if err := sonic.UnmarshalString(raw, &resp); err != nil {
		log.Warn().Err(err).Msg("discarding unreadable cached ranking")
		return nil
	}
	return &resp
}

func (e *Evaluator) store(ctx context.Context, key string, resp *Response) {
	if e.cache == nil || key == "" {
		return
	}
	raw, err := sonic.MarshalString(resp)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode ranking for cache")
		return
	}
	if err := e.cache.Set(ctx, key, raw, e.cacheTTL); err != nil {
		log.Warn().Err(err).Msg("failed to cache ranking")
	}
}
