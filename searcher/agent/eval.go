package agent

import (
	"context"
	"mcgs/experiments/metrics"
	"mcgs/game"
	"mcgs/searcher"
)

type evaluationAgent struct {
	mcts *searcher.MCTS
}

// NewEvaluationAgent returns an agent that plays the searcher's recommendation.
func NewEvaluationAgent(mcts *searcher.MCTS) Agent {
	return evaluationAgent{mcts: mcts}
}

func (a evaluationAgent) FindMove(ctx context.Context, state game.State) (game.Action, metrics.SearchMetric, error) {
	action, err := a.mcts.Search(ctx, state)
	if err != nil {
		return nil, metrics.SearchMetric{}, err
	}
	return action, a.mcts.Metric(), nil
}
