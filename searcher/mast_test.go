package searcher

import (
	"context"
	"mcgs/game"
	"mcgs/game/nim"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMAST(t *testing.T) {
	state := nim.New(2, 10, 3)

	t.Run("unseen actions get the default", func(t *testing.T) {
		m := NewMAST(2)
		m.Default = 0.5
		require.Equal(t, 0.5, m.Value(nim.Take(1), state))

		for player := 0; player < 2; player++ {
			for i := 0; i < 5; i++ {
				m.Update(player, nim.Take(2), 1)
				m.Update(player, nim.Take(3), 0.2)
			}
		}
		require.Equal(t, 0.5, m.Value(nim.Take(1), state), "Other actions should not affect an unseen one")
		_, ok := m.Entry(0, nim.Take(1))
		require.False(t, ok)
	})

	t.Run("averaging per player", func(t *testing.T) {
		m := NewMAST(2)
		m.Update(0, nim.Take(2), 1)
		m.Update(0, nim.Take(2), 0)
		m.Update(1, nim.Take(2), 1)

		entry, ok := m.Entry(0, nim.Take(2))
		require.True(t, ok)
		require.Equal(t, 2.0, entry.Visits)
		require.InDelta(t, 0.5, m.Value(nim.Take(2), state), 1e-12, "Player 0 acts in state")

		other, _ := m.Entry(1, nim.Take(2))
		require.InDelta(t, 1, other.Mean(), 1e-12)

		_, ok = m.Entry(5, nim.Take(2))
		require.False(t, ok, "Unknown players have no entries")
	})

	t.Run("updates keep plain totals", func(t *testing.T) {
		m := NewMAST(1)
		m.Momentum = 0.5
		m.Update(0, nim.Take(1), 1)
		m.Update(0, nim.Take(1), 0)

		entry, _ := m.Entry(0, nim.Take(1))
		require.Equal(t, 2.0, entry.Visits)
		require.InDelta(t, 0.5, entry.Mean(), 1e-12)
	})

	t.Run("momentum decays every entry", func(t *testing.T) {
		m := NewMAST(2)
		m.Momentum = 0.5
		m.Update(0, nim.Take(1), 1)
		for i := 0; i < 10; i++ {
			m.Update(1, nim.Take(2), 0)
		}
		left, _ := m.Entry(0, nim.Take(1))
		require.Equal(t, 1.0, left.Visits, "Updating one action should leave the others alone")

		m.Decay()
		left, _ = m.Entry(0, nim.Take(1))
		require.InDelta(t, 0.5, left.Visits, 1e-12)
		require.InDelta(t, 1, left.Mean(), 1e-12, "Decay keeps the mean")
		right, _ := m.Entry(1, nim.Take(2))
		require.InDelta(t, 5, right.Visits, 1e-12)
	})

	t.Run("decay without momentum", func(t *testing.T) {
		m := NewMAST(1)
		m.Update(0, nim.Take(1), 1)
		m.Decay()
		entry, _ := m.Entry(0, nim.Take(1))
		require.Equal(t, 1.0, entry.Visits)
	})

	t.Run("external heuristic is skipped without weight", func(t *testing.T) {
		m := NewMAST(2)
		m.Update(0, nim.Take(1), 1)
		m.External = func(game.Action, game.State) float64 {
			panic("external heuristic should not be called")
		}
		require.NotPanics(t, func() {
			require.Equal(t, 1.0, m.Evaluate(nim.Take(1), state, nil))
		})
	})

	t.Run("blending the external heuristic", func(t *testing.T) {
		m := NewMAST(2)
		m.Update(0, nim.Take(1), 1)
		m.Weight = 0.25
		m.External = func(game.Action, game.State) float64 { return 0 }
		require.InDelta(t, 0.75, m.Evaluate(nim.Take(1), state, nil), 1e-12)
	})

	t.Run("reduced keys share statistics", func(t *testing.T) {
		m := NewMAST(1)
		m.KeyOf = func(a game.Action) string {
			return strings.TrimSuffix(a.Key(), "!")
		}
		m.Update(0, abAction("A!"), 1)
		entry, ok := m.Entry(0, abAction("A"))
		require.True(t, ok)
		require.Equal(t, 1.0, entry.Visits)
	})

	t.Run("reset drops statistics", func(t *testing.T) {
		m := NewMAST(2)
		m.Update(1, nim.Take(1), 1)
		m.Reset(2)
		_, ok := m.Entry(1, nim.Take(1))
		require.False(t, ok)
	})
}

func TestMASTPolicy(t *testing.T) {
	state := nim.New(2, 10, 3)
	actions := []game.Action{nim.Take(1), nim.Take(2), nim.Take(3)}

	t.Run("uniform without statistics", func(t *testing.T) {
		p := MASTPolicy{Table: NewMAST(2), Temperature: 1}
		require.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, p.Probabilities(state, actions), 1e-12)
	})

	t.Run("favouring the best action", func(t *testing.T) {
		table := NewMAST(2)
		table.Update(0, nim.Take(1), 3)
		table.Update(0, nim.Take(2), 1)
		table.Update(0, nim.Take(3), 1)
		p := MASTPolicy{Table: table, Temperature: 1}

		probs := p.Probabilities(state, actions)
		require.InDelta(t, 0.576, probs[0], 0.001)
		require.InDelta(t, 0.212, probs[1], 0.001)
	})
}

func TestSearchMAST(t *testing.T) {
	search := func(t *testing.T, options ...Option) *MCTS {
		m, err := New(nim.Model{}, append([]Option{WithIterations(50), WithSeed(5)}, options...)...)
		require.NoError(t, err)
		_, err = m.Search(context.Background(), nim.New(2, 10, 3))
		require.NoError(t, err)
		return m
	}
	seen := func(m *MCTS) float64 {
		total := 0.0
		for player := 0; player < 2; player++ {
			for take := 1; take <= 3; take++ {
				entry, _ := m.MAST().Entry(player, nim.Take(take))
				total += entry.Visits
			}
		}
		return total
	}

	t.Run("rollout actions update the table", func(t *testing.T) {
		m := search(t, WithMAST(0.5, 0.5, 0))
		require.Positive(t, seen(m))
	})

	t.Run("tree only mode", func(t *testing.T) {
		m := search(t, WithMAST(0.5, 0.5, 0), WithMASTMode(MASTTreeOnly), WithRolloutLength(0))
		require.Positive(t, seen(m), "Tree actions should be recorded even without rollouts")
	})

	t.Run("rollout only mode without rollouts", func(t *testing.T) {
		m := search(t, WithMAST(0.5, 0.5, 0), WithRolloutLength(0))
		require.Zero(t, seen(m))
	})

	t.Run("statistics reset between searches", func(t *testing.T) {
		m := search(t, WithMAST(0.5, 0.5, 0))
		first := seen(m)
		_, err := m.Search(context.Background(), nim.New(2, 10, 3))
		require.NoError(t, err)
		require.Equal(t, first, seen(m), "Same seed should rebuild the same table")
	})

	t.Run("keeping statistics between searches", func(t *testing.T) {
		m := search(t, WithMAST(0.5, 0.5, 0), WithKeepMAST())
		first := seen(m)
		_, err := m.Search(context.Background(), nim.New(2, 10, 3))
		require.NoError(t, err)
		require.Greater(t, seen(m), first)
	})

	t.Run("kept statistics decay once per search", func(t *testing.T) {
		m := search(t, WithMAST(0.5, 0.5, 0.5), WithKeepMAST())
		first := seen(m)
		require.Positive(t, first)
		_, err := m.Search(context.Background(), nim.New(2, 10, 3))
		require.NoError(t, err)
		// Random rollouts ignore the table, so the second search repeats the
		// first one's updates on top of the decayed statistics.
		require.InDelta(t, 1.5*first, seen(m), 1e-9)

		_, err = m.Search(context.Background(), nim.New(2, 10, 3))
		require.NoError(t, err)
		require.InDelta(t, 1.75*first, seen(m), 1e-9)
	})

	t.Run("MAST rollouts", func(t *testing.T) {
		m := search(t, WithRollout(MASTRollout))
		require.Positive(t, seen(m), "MAST rollouts maintain the table")
	})
}
