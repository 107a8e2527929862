package agent

import (
	"context"
	"mcgs/experiments/metrics"
	"mcgs/game"
)

type Agent interface {
	// FindMove returns the action to play and the metrics of the search that chose it
	FindMove(ctx context.Context, state game.State) (game.Action, metrics.SearchMetric, error)
}
