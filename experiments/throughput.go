package experiments

import (
	"context"
	"mcgs/experiments/metrics"
	"mcgs/searcher"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

type Throughput struct {
	Agent             metrics.AgentConfig
	Searches          int
	IterationsPerSec  float64 // Mean over searches
	IterationsStdDev  float64
	MeanNodes         float64
	MeanForwardCalls  float64
	MeanIterations    float64
	NodesPerIteration float64
}

// RunThroughput searches the initial state of game once per repetition with
// every agent and reports how fast each configuration iterates.
func RunThroughput(ctx context.Context, g GameConfig, agents []metrics.AgentConfig, repetitions int) ([]Throughput, error) {
	if repetitions <= 0 {
		return nil, errors.Errorf("throughput needs positive repetitions, got %d", repetitions)
	}
	model, state, err := g.New()
	if err != nil {
		return nil, err
	}
	log.Info().Msg("starting throughput experiment...")

	results := make([]Throughput, 0, len(agents))
	for _, config := range agents {
		cfg, err := searcher.ParseConfig(config.Params)
		if err != nil {
			return nil, errors.WithMessagef(err, "agent %d", config.ID)
		}
		mcts, err := searcher.New(model, searcher.WithConfig(cfg), searcher.WithMetrics())
		if err != nil {
			return nil, errors.WithMessagef(err, "agent %d", config.ID)
		}

		rates := make([]float64, 0, repetitions)
		nodes := make([]float64, 0, repetitions)
		calls := make([]float64, 0, repetitions)
		iterations := make([]float64, 0, repetitions)
		for i := 0; i < repetitions; i++ {
			if _, err := mcts.Search(ctx, state); err != nil {
				return nil, errors.WithMessagef(err, "agent %d", config.ID)
			}
			metric := mcts.Metric()
			seconds := metric.Duration.Seconds()
			if seconds <= 0 {
				seconds = time.Nanosecond.Seconds()
			}
			rates = append(rates, float64(metric.Iterations)/seconds)
			nodes = append(nodes, float64(metric.Nodes))
			calls = append(calls, float64(metric.ForwardModelCalls))
			iterations = append(iterations, float64(metric.Iterations))
		}

		mean, std := stat.MeanStdDev(rates, nil)
		if repetitions == 1 {
			std = 0
		}
		t := Throughput{
			Agent:            config,
			Searches:         repetitions,
			IterationsPerSec: mean,
			IterationsStdDev: std,
			MeanNodes:        stat.Mean(nodes, nil),
			MeanForwardCalls: stat.Mean(calls, nil),
			MeanIterations:   stat.Mean(iterations, nil),
		}
		if t.MeanIterations > 0 {
			t.NodesPerIteration = t.MeanNodes / t.MeanIterations
		}
		log.Info().Msgf("agent %d (%s): %.0f iterations/s, %.1f nodes per iteration",
			config.ID, config.Name, t.IterationsPerSec, t.NodesPerIteration)
		results = append(results, t)
	}
	log.Info().Msg("completed throughput experiment")
	return results, nil
}
