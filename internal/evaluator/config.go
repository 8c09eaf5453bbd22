package evaluator

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/territory-ranker/internal/config"
	"github.com/tensorplex-labs/territory-ranker/internal/scoring"
	"github.com/tensorplex-labs/territory-ranker/internal/storage"
	"github.com/tensorplex-labs/territory-ranker/internal/territory"
	"github.com/tensorplex-labs/territory-ranker/internal/utils/redis"
)

// NewEvaluatorFromConfig layers ranking settings in increasing precedence:
// built-in level specs, RANKING_* environment, then the YAML profile. cache
// may be nil; it is only used when caching is enabled.
func NewEvaluatorFromConfig(cfg *config.AppConfig, source storage.Source, cache redis.RedisInterface) (*Evaluator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	specs := territory.DefaultLevelSpecs()
	if len(cfg.Weights) > 0 {
		for level, spec := range specs {
			if len(cfg.Weights) != len(spec.Criteria) {
				return nil, fmt.Errorf("%w: RANKING_WEIGHTS has %d values, %s has %d criteria",
					scoring.ErrMalformedWeights, len(cfg.Weights), level, len(spec.Criteria))
			}
			spec.Weights = append([]float64(nil), cfg.Weights...)
			specs[level] = spec
		}
	}

	thresholds := scoring.Thresholds{
		Indifference: cfg.Indifference,
		Preference:   cfg.Preference,
		Veto:         cfg.Veto,
	}
	policyName := cfg.DegeneratePolicy

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}
	if err := territory.ApplyProfile(specs, profile); err != nil {
		return nil, err
	}
	if profile.Thresholds != nil {
		thresholds = scoring.Thresholds{
			Indifference: profile.Thresholds.Indifference,
			Preference:   profile.Thresholds.Preference,
			Veto:         profile.Thresholds.Veto,
		}
	}
	if profile.DegeneratePolicy != "" {
		policyName = profile.DegeneratePolicy
	}

	policy, ok := scoring.ParseDegeneratePolicy(policyName)
	if !ok {
		return nil, fmt.Errorf("unknown degenerate policy %q", policyName)
	}

	opts := []EvaluatorOption{
		WithLevelSpecs(specs),
		WithThresholds(thresholds),
		WithDegeneratePolicy(policy),
		WithTimeout(config.NewTimeoutConfig(cfg.Environment).RequestTimeout),
	}
	if cfg.CacheEnabled && cache != nil {
		opts = append(opts, WithCache(cache, cfg.CacheTTL))
	}

	log.Info().
		Any("thresholds", thresholds).
		Str("degeneratePolicy", policy.String()).
		Bool("cache", cfg.CacheEnabled && cache != nil).
		Msg("ranking defaults resolved")

	return NewEvaluator(source, opts...)
}
