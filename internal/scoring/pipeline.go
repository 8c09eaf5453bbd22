package scoring

import (
	"fmt"
	"time"

	"github.com/tensorplex-labs/territory-ranker/internal/utils/logger"
)

// RankingPipeline runs normalization, outranking and ranking for one
// criteria table. A pipeline holds no per-call state and can be shared.
type RankingPipeline struct {
	Weights          []float64
	Thresholds       Thresholds
	DegeneratePolicy DegeneratePolicy
}

type RankingPipelineOption func(*RankingPipeline)

// WithWeights sets one weight per criterion. Nil means uniform weights.
func WithWeights(weights []float64) RankingPipelineOption {
	return func(p *RankingPipeline) {
		p.Weights = append([]float64(nil), weights...)
	}
}

func WithThresholds(thresholds Thresholds) RankingPipelineOption {
	return func(p *RankingPipeline) {
		p.Thresholds = thresholds
	}
}

func WithIndifference(indifference float64) RankingPipelineOption {
	return func(p *RankingPipeline) {
		p.Thresholds.Indifference = indifference
	}
}

func WithPreference(preference float64) RankingPipelineOption {
	return func(p *RankingPipeline) {
		p.Thresholds.Preference = preference
	}
}

func WithVeto(veto float64) RankingPipelineOption {
	return func(p *RankingPipeline) {
		p.Thresholds.Veto = veto
	}
}

func WithDegeneratePolicy(policy DegeneratePolicy) RankingPipelineOption {
	return func(p *RankingPipeline) {
		p.DegeneratePolicy = policy
	}
}

func OutrankingPipeline(opts ...RankingPipelineOption) *RankingPipeline {
	p := &RankingPipeline{
		Thresholds:       DefaultThresholds(),
		DegeneratePolicy: DegenerateAsTie,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Evaluate ranks table and returns its original records reordered by
// descending net score.
func (p *RankingPipeline) Evaluate(table *CriteriaTable) (*RankedTable, error) {
	start := time.Now()

	normalized, err := Normalize(table, p.DegeneratePolicy)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	weights := p.Weights
	if weights == nil {
		weights = UniformWeights(len(table.Criteria))
	}

	matrices, err := BuildOutrankingMatrices(normalized, weights, p.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("build outranking matrices: %w", err)
	}

	scores := NetScores(matrices)
	order := rankScores(scores)

	ranked := &RankedTable{
		KeyColumn: table.KeyColumn,
		Criteria:  append([]string(nil), table.Criteria...),
		Entries:   make([]RankedEntry, len(order)),
	}
	for pos, idx := range order {
		src := table.Records[idx]
		ranked.Entries[pos] = RankedEntry{
			Record: Record{
				Key:    src.Key,
				Values: append([]float64(nil), src.Values...),
			},
			Score:    scores[idx],
			Position: pos + 1,
		}
	}

	logger.Sugar().Infow("Ranked criteria table",
		"keyColumn", table.KeyColumn,
		"entities", table.Len(),
		"criteria", len(table.Criteria),
		"degenerate", normalized.Degenerate,
		"thresholds", p.Thresholds,
		"elapsed", time.Since(start),
	)
	return ranked, nil
}
