package searcher

import "github.com/pkg/errors"

var (
	// ErrNonFinite is returned when a heuristic evaluates a state to NaN or an infinity.
	ErrNonFinite = errors.New("heuristic returned a non-finite value")

	// ErrNoActions is returned when a non-terminal state has no available actions.
	ErrNoActions = errors.New("non-terminal state has no available actions")

	ErrInvalidConfig = errors.New("invalid search configuration")

	ErrPolicyMismatch = errors.New("multi-player policy does not fit the game")
)
