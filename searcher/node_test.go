package searcher

import (
	"mcgs/game"
	"testing"

	"github.com/stretchr/testify/require"
)

// abState is a one-ply game: the player picks A (scores 1) or B (scores 0).
type abAction string

func (a abAction) Key() string {
	return string(a)
}

type abState struct {
	played string
}

func (s *abState) Copy() game.State {
	c := *s
	return &c
}

func (s *abState) Key() string {
	return "ab:" + s.played
}

func (s *abState) Player() int {
	return 0
}

func (s *abState) Players() int {
	return 1
}

func (s *abState) Terminal() bool {
	return s.played != ""
}

func (s *abState) Score(int) float64 {
	if s.played == "A" {
		return 1
	}
	return 0
}

type abModel struct{}

func (abModel) Setup(game.State) {}

func (abModel) Actions(state game.State) []game.Action {
	if state.Terminal() {
		return nil
	}
	return []game.Action{abAction("A"), abAction("B")}
}

func (abModel) Next(state game.State, action game.Action) {
	state.(*abState).played = action.Key()
}

// stuckModel never offers an action, even in non-terminal states.
type stuckModel struct {
	abModel
}

func (stuckModel) Actions(game.State) []game.Action {
	return nil
}

// mockNode builds a detached node with statistics for the given actions.
func mockNode(players int, actions ...game.Action) *Node {
	n := &Node{
		actions:  actions,
		stats:    map[string]*ActionStats{},
		children: map[string]*Node{},
	}
	for _, a := range actions {
		n.stats[a.Key()] = newActionStats(players)
	}
	return n
}

func connect(parent *Node, action game.Action, child *Node) {
	parent.children[action.Key()] = child
	child.link(parent, action.Key())
}

func TestActionStats(t *testing.T) {
	t.Run("accumulating values per player", func(t *testing.T) {
		s := newActionStats(2)
		s.update([]float64{1, -1})
		s.update([]float64{0.5, -0.5})

		require.Equal(t, 2, s.Visits)
		require.InDelta(t, 1.5, s.Total(0), 1e-12)
		require.InDelta(t, -0.75, s.Mean(1), 1e-12)
	})

	t.Run("mean without visits", func(t *testing.T) {
		require.Zero(t, newActionStats(1).Mean(0))
	})
}

func TestNodeCredit(t *testing.T) {
	parent := mockNode(1, abAction("A"), abAction("B"))
	child := mockNode(1)
	connect(parent, abAction("A"), child)

	parent.credit("A", []float64{1})
	parent.credit("B", []float64{0})

	require.Equal(t, 2, parent.Visits(), "Node visits should sum its action visits")
	require.Equal(t, 1, child.Arrivals(), "Only the expanded action should reach the child")
	require.True(t, child.priorOnly())
	require.False(t, parent.priorOnly())
	require.Same(t, child, parent.Child(abAction("A")))
	require.Nil(t, parent.Child(abAction("B")))
	require.Equal(t, 1, parent.Children())
}

func TestTranspositions(t *testing.T) {
	table := newTranspositions()
	a := &Node{key: "a"}
	b := &Node{key: "b"}
	table.insert(a)
	table.insert(b)

	require.Same(t, a, table.lookup("a"))
	require.Same(t, b, table.lookup("b"))
	require.Nil(t, table.lookup("c"))
	require.Equal(t, 2, table.size())
	require.Equal(t, []*Node{a, b}, table.nodes(), "Should keep insertion order")
}
