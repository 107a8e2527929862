package agent

import (
	"context"
	"math"
	"mcgs/experiments/metrics"
	"mcgs/game"
	"mcgs/searcher"

	"golang.org/x/exp/rand"
)

type trainingAgent struct {
	mcts        *searcher.MCTS
	temperature float64
	rng         *rand.Rand
}

// NewTrainingAgent returns an agent for self-play, sampling root actions in
// proportion to visits^(1/temperature) instead of always playing the most
// visited one.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, seed uint64) Agent {
	return &trainingAgent{
		mcts:        mcts,
		temperature: temperature,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (a *trainingAgent) FindMove(ctx context.Context, state game.State) (game.Action, metrics.SearchMetric, error) {
	recommended, err := a.mcts.Search(ctx, state)
	if err != nil {
		return nil, metrics.SearchMetric{}, err
	}
	stats := a.mcts.RootStatistics()
	if stats.Iterations == 0 {
		return recommended, a.mcts.Metric(), nil
	}

	visits := make([]float64, len(stats.Actions))
	for i, action := range stats.Actions {
		visits[i] = float64(stats.Visits[action.Key()])
	}
	policy := adjustTemperature(visits, a.temperature)
	return stats.Actions[searcher.Sample(a.rng, policy)], a.mcts.Metric(), nil
}

func adjustTemperature(visits []float64, temperature float64) []float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(visits))
	for i, visit := range visits {
		prob := math.Pow(visit, exponent)
		sum += prob
		adjusted[i] = prob
	}
	if sum == 0 {
		for i := range adjusted {
			adjusted[i] = 1 / float64(len(adjusted))
		}
		return adjusted
	}
	// Normalize
	for i := range adjusted {
		adjusted[i] /= sum
	}
	return adjusted
}
