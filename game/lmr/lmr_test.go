package lmr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModel(t *testing.T) {
	t.Run("playing every turn", func(t *testing.T) {
		state := New(2)
		model := Model{}

		model.Next(state, Left)
		require.False(t, state.Terminal(), "One of two turns should not end the game")
		model.Next(state, Middle)

		require.True(t, state.Terminal(), "Game should end after all turns")
		require.Empty(t, model.Actions(state), "Terminal state should have no actions")
		require.Equal(t, 1.5, state.Score(0), "Score should sum the rewards of each choice")
	})

	t.Run("different orders reach the same state", func(t *testing.T) {
		model := Model{}
		a, b := New(2), New(2)

		model.Next(a, Left)
		model.Next(a, Right)
		model.Next(b, Right)
		model.Next(b, Left)

		require.Equal(t, a.Key(), b.Key(), "Order of choices should not matter")
	})

	t.Run("copies are independent", func(t *testing.T) {
		state := New(3)
		clone := state.Copy()

		Model{}.Next(clone, Left)

		require.NotEqual(t, state.Key(), clone.Key(), "Mutating a copy should not touch the original")
		require.Zero(t, state.Score(0), "Original should keep its score")
	})
}
