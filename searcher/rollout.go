package searcher

import (
	"math"
	"mcgs/game"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// RolloutPolicy picks the next action of a rollout among the available ones.
type RolloutPolicy interface {
	Choose(rng *rand.Rand, state game.State, actions []game.Action) game.Action
}

type RandomPolicy struct{}

func (RandomPolicy) Choose(rng *rand.Rand, state game.State, actions []game.Action) game.Action {
	return actions[rng.Intn(len(actions))]
}

// EpsilonGreedyPolicy plays the action the heuristic values most, or a random
// action with probability Epsilon. Ties go to the first action.
type EpsilonGreedyPolicy struct {
	Epsilon   float64
	Heuristic game.ActionHeuristic
}

func (p EpsilonGreedyPolicy) Choose(rng *rand.Rand, state game.State, actions []game.Action) game.Action {
	if p.Heuristic == nil || rng.Float64() < p.Epsilon {
		return actions[rng.Intn(len(actions))]
	}
	best := 0
	bestValue := math.Inf(-1)
	for i, action := range actions {
		if value := p.Heuristic(action, state); value > bestValue {
			best = i
			bestValue = value
		}
	}
	return actions[best]
}

// MASTPolicy samples actions from a Boltzmann distribution over their MAST
// estimates.
type MASTPolicy struct {
	Table       *MAST
	Temperature float64
}

func (p MASTPolicy) Probabilities(state game.State, actions []game.Action) []float64 {
	values := make([]float64, len(actions))
	for i, action := range actions {
		values[i] = p.Table.Evaluate(action, state, actions)
	}
	return boltzmann(values, p.Temperature)
}

func (p MASTPolicy) Choose(rng *rand.Rand, state game.State, actions []game.Action) game.Action {
	return actions[Sample(rng, p.Probabilities(state, actions))]
}

// played is an action taken during an iteration, by the player who took it.
type played struct {
	action game.Action
	player int
}

type rolloutResult struct {
	values   []float64
	actions  []played
	terminal bool
}

// evaluate scores a state for every player and rejects non-finite scores.
func evaluate(heuristic game.Heuristic, state game.State) ([]float64, error) {
	values := make([]float64, state.Players())
	for player := range values {
		v := heuristic(state, player)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.Wrapf(ErrNonFinite, "player %d scored %v", player, v)
		}
		values[player] = v
	}
	return values, nil
}

// rollout plays from state (mutating it) until the rollout length or a
// terminal state is reached, then evaluates the result. With a discount
// below one, each step's score change is credited as gamma^i * (v_i - v_{i-1}).
func (m *MCTS) rollout(state game.State) (rolloutResult, error) {
	result := rolloutResult{}
	discounted := m.config.Discount < 1

	var previous, accumulated []float64
	if discounted {
		values, err := evaluate(m.heuristic, state)
		if err != nil {
			return result, err
		}
		previous = values
		accumulated = append([]float64(nil), values...)
	}

	weight := 1.0
	for depth := 0; depth < m.config.RolloutLength && !state.Terminal(); depth++ {
		actions := m.model.Actions(state)
		if len(actions) == 0 {
			return result, errors.Wrapf(ErrNoActions, "rollout step %d", depth)
		}

		player := state.Player()
		action := m.rolloutPolicy.Choose(m.rng, state, actions)
		m.model.Next(state, action)
		result.actions = append(result.actions, played{action: action, player: player})

		if discounted {
			values, err := evaluate(m.heuristic, state)
			if err != nil {
				return result, err
			}
			weight *= m.config.Discount
			for i := range values {
				accumulated[i] += weight * (values[i] - previous[i])
			}
			previous = values
		}
	}
	result.terminal = state.Terminal()

	if discounted {
		result.values = accumulated
		return result, nil
	}
	values, err := evaluate(m.heuristic, state)
	if err != nil {
		return result, err
	}
	result.values = values
	return result, nil
}
