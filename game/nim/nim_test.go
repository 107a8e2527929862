package nim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModel(t *testing.T) {
	t.Run("legal takes are bounded by the pile", func(t *testing.T) {
		state := New(2, 2, 3)

		actions := Model{}.Actions(state)

		require.Len(t, actions, 2, "Should not take more stones than the pile holds")
	})

	t.Run("taking the last stone wins", func(t *testing.T) {
		state := New(3, 4, 3)
		model := Model{}

		model.Next(state, Take(1))
		model.Next(state, Take(3))

		require.True(t, state.Terminal(), "Empty pile should end the game")
		require.Equal(t, 1, state.Winner, "Player who emptied the pile should win")
		require.Equal(t, Win, state.Score(1), "Winner should score a win")
		require.Equal(t, Loss, state.Score(0), "Others should score a loss")
	})

	t.Run("move orders transpose", func(t *testing.T) {
		model := Model{}
		a, b := New(2, 10, 3), New(2, 10, 3)

		model.Next(a, Take(1))
		model.Next(a, Take(2))
		model.Next(b, Take(2))
		model.Next(b, Take(1))

		require.Equal(t, a.Key(), b.Key(), "Same stones taken should reach the same state")
	})

	t.Run("illegal take panics", func(t *testing.T) {
		require.Panics(t, func() { Model{}.Next(New(2, 1, 3), Take(2)) }, "Taking more than the pile should panic")
	})
}
