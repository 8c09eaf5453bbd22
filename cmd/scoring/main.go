package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/territory-ranker/internal/scoring"
	"github.com/tensorplex-labs/territory-ranker/internal/utils/logger"
)

func main() {
	logger.Init()

	testTwoEntities()
	testIdenticalEntities()
	testCommunes()
}

func run(title string, table *scoring.CriteriaTable, opts ...scoring.RankingPipelineOption) {
	log.Info().Msgf("--- %s ---", title)
	ranked, err := scoring.OutrankingPipeline(opts...).Evaluate(table)
	if err != nil {
		log.Error().Err(err).Msg("ranking failed")
		return
	}
	for _, e := range ranked.Entries {
		log.Info().Str("key", e.Record.Key).Float64("score", e.Score).Msgf("#%d %s scored %f", e.Position, e.Record.Key, e.Score)
	}
	scoring.PlotRankingTerminal(os.Stdout, ranked, title)
}

func testTwoEntities() {
	run("Two entities, one criterion", &scoring.CriteriaTable{
		KeyColumn: "name",
		Criteria:  []string{"x"},
		Records: []scoring.Record{
			{Key: "A", Values: []float64{1}},
			{Key: "B", Values: []float64{2}},
		},
	}, scoring.WithWeights([]float64{1}))
}

func testIdenticalEntities() {
	run("Identical entities", &scoring.CriteriaTable{
		KeyColumn: "name",
		Criteria:  []string{"x", "y"},
		Records: []scoring.Record{
			{Key: "P", Values: []float64{5, 5}},
			{Key: "Q", Values: []float64{5, 5}},
			{Key: "R", Values: []float64{5, 5}},
		},
	})
}

func testCommunes() {
	run("Communes", &scoring.CriteriaTable{
		KeyColumn: "inom",
		Criteria:  []string{"fprod", "fcaf", "fcafn", "febf", "fdette", "fequip"},
		Records: []scoring.Record{
			{Key: "AMIENS", Values: []float64{1310, 155, 80, 190, 1020, 420}},
			{Key: "ROUEN", Values: []float64{1580.5, 120, 40, 170, 1610, 510}},
			{Key: "NANTES", Values: []float64{1420, 210, 130, 240, 880, 610}},
			{Key: "SAINT-ÉTIENNE", Values: []float64{1190, 100, 20, 150, 1200, 300}},
		},
	}, scoring.WithWeights(scoring.DefaultWeights()))
}
