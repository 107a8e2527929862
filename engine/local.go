package engine

import (
	"context"
	"mcgs/experiments/metrics"
	"mcgs/game"
	"mcgs/searcher/agent"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Local plays a game in process, asking the agent of the acting player for
// every move.
type Local struct {
	model    game.ForwardModel
	state    game.State
	agents   []agent.Agent
	maxMoves int
}

var _ Engine = (*Local)(nil)

func NewLocal(model game.ForwardModel, state game.State, agents []agent.Agent, maxMoves int) (*Local, error) {
	if len(agents) != state.Players() {
		return nil, errors.Errorf("number of agents %d does not match number of players %d", len(agents), state.Players())
	}
	if maxMoves <= 0 {
		maxMoves = MaxMoves
	}
	model.Setup(state)
	return &Local{model: model, state: state, agents: agents, maxMoves: maxMoves}, nil
}

func (e *Local) State() game.State {
	return e.state
}

// Run executes the game loop until the game is over.
func (e *Local) Run(ctx context.Context) (metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.state.Player(),
		StartTime:      time.Now(),
		Winner:         -1,
	}
	log.Info().Msgf("player %d is starting", e.state.Player())

	var moveMetrics []metrics.MoveMetric
	step := 1
	for !e.state.Terminal() && step <= e.maxMoves {
		legal := e.model.Actions(e.state)
		if len(legal) == 0 {
			break // Pass-only state with nothing to play
		}
		player := e.state.Player()

		action, searchMetric, err := e.agents[player].FindMove(ctx, e.state.Copy())
		if err != nil {
			return gameMetric, moveMetrics, errors.WithMessagef(err, "player %d at step %d", player, step)
		}
		if !isLegal(legal, action) {
			log.Warn().Msgf("player %d chose an illegal action %v, playing %s instead", player, action, legal[0].Key())
			action = legal[0]
		}

		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       player,
			Action:       action.Key(),
			SearchMetric: searchMetric,
		})
		e.model.Next(e.state, action)
		step++
	}

	if !e.state.Terminal() {
		log.Warn().Msgf("stopped after %d moves without a finished game", step-1)
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalMoves = step - 1
	gameMetric.Scores = make([]float64, e.state.Players())
	for p := range gameMetric.Scores {
		gameMetric.Scores[p] = e.state.Score(p)
	}
	if e.state.Terminal() {
		gameMetric.Winner = winner(gameMetric.Scores)
	}
	log.Info().Msgf("game over after %d moves, winner %d, scores %v", gameMetric.TotalMoves, gameMetric.Winner, gameMetric.Scores)
	return gameMetric, moveMetrics, nil
}

func isLegal(legal []game.Action, action game.Action) bool {
	if action == nil {
		return false
	}
	for _, a := range legal {
		if a.Key() == action.Key() {
			return true
		}
	}
	return false
}

// winner is the single player with the highest score, or -1 on a tie.
func winner(scores []float64) int {
	best := -1
	tied := false
	for p, score := range scores {
		switch {
		case best < 0 || score > scores[best]:
			best = p
			tied = false
		case score == scores[best]:
			tied = true
		}
	}
	if tied {
		return -1
	}
	return best
}
