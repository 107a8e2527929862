package game

import "github.com/OneOfOne/xxhash"

// Action is a move a player can take. Equal actions reached through different
// code paths must return the same key, since keys index action statistics.
type Action interface {
	Key() string
}

type StateHash uint64

// State is a mutable game state. Copy must produce an independently mutable
// clone whose Key stays equal to the original until either one is mutated.
type State interface {
	Copy() State
	// Key is a canonical encoding of the full state (not only the information
	// visible to the acting player). Equal states return equal keys.
	Key() string
	Player() int
	Players() int
	Terminal() bool
	// Score returns the heuristic (or final, once terminal) score of a player.
	Score(player int) float64
}

// ForwardModel advances states. Actions must be deterministic for equal states;
// an empty list signals a terminal or pass-only state. Next mutates the given
// state in place.
type ForwardModel interface {
	Setup(state State)
	Actions(state State) []Action
	Next(state State, action Action)
}

// Heuristic evaluates a state from a player's perspective.
type Heuristic func(state State, player int) float64

// ActionHeuristic estimates the value of playing an action in a state.
type ActionHeuristic func(action Action, state State) float64

// Score is the default heuristic: the state's own scoring function.
func Score(state State, player int) float64 {
	return state.Score(player)
}

// Hash reduces a canonical state key to a table index.
func Hash(key string) StateHash {
	return StateHash(xxhash.ChecksumString64(key))
}

func HashOf(state State) StateHash {
	return Hash(state.Key())
}
