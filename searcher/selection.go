package searcher

import (
	"math"
	"mcgs/game"
	"sort"

	"github.com/pkg/errors"
)

// newNode creates a node for state, seeding one statistics entry per
// available action.
func (m *MCTS) newNode(parent *Node, action string, state game.State) *Node {
	actions := m.model.Actions(state)
	players := state.Players()
	node := &Node{
		id:       m.nodes,
		parent:   parent,
		terminal: state.Terminal(),
		player:   state.Player(),
		actions:  actions,
		stats:    make(map[string]*ActionStats, len(actions)),
		children: make(map[string]*Node),
	}
	m.nodes++
	if parent != nil {
		node.depth = parent.depth + 1
		node.link(parent, action)
	}
	if m.config.Graph {
		node.key = state.Key()
	}

	estimates := m.estimates(state, actions)
	for i, a := range actions {
		stats := newActionStats(players)
		if m.config.InitVisits > 0 {
			stats.Visits = m.config.InitVisits
			for p, v := range prior(m.multiplayer, players, node.player, estimates[i]) {
				stats.Values[p] = v * float64(m.config.InitVisits)
			}
		}
		node.stats[a.Key()] = stats
	}

	if m.config.widening() {
		node.estimates = estimates
		node.ranked = make([]int, len(actions))
		for i := range node.ranked {
			node.ranked[i] = i
		}
		sort.SliceStable(node.ranked, func(a, b int) bool {
			return estimates[node.ranked[a]] > estimates[node.ranked[b]]
		})
	}
	return node
}

// estimates values actions with the action heuristic, zero without one.
func (m *MCTS) estimates(state game.State, actions []game.Action) []float64 {
	estimates := make([]float64, len(actions))
	if m.actionHeuristic == nil {
		return estimates
	}
	for i, action := range actions {
		estimates[i] = m.actionHeuristic(action, state)
	}
	return estimates
}

// widen returns how many actions of a node with the given visits are eligible.
func widen(constant, exponent float64, visits int) int {
	n := math.Max(1, float64(visits))
	return int(math.Ceil(constant * math.Pow(n, exponent)))
}

// candidates returns the indices of the actions eligible at a node. With
// progressive widening only the best-ranked ones are, and expanded actions
// win ties in rank so widening never hides an action already in the tree.
// The limit counts the node's own visits, whichever path reached it.
func (m *MCTS) candidates(n *Node) []int {
	if !m.config.widening() {
		all := make([]int, len(n.actions))
		for i := range all {
			all[i] = i
		}
		return all
	}

	limit := widen(m.config.WideningConstant, m.config.WideningExponent, n.visits)
	if limit >= len(n.ranked) {
		return n.ranked
	}
	ranked := append([]int(nil), n.ranked...)
	sort.SliceStable(ranked, func(a, b int) bool {
		i, j := ranked[a], ranked[b]
		if n.estimates[i] != n.estimates[j] {
			return n.estimates[i] > n.estimates[j]
		}
		return n.expanded(i) && !n.expanded(j)
	})
	return ranked[:limit]
}

// selectAction chooses the action to descend into from n. Unexpanded
// candidates come first (bounded by the first play urgency); otherwise the
// candidate maximizing the UCB score of the acting player wins, ties going to
// the earliest candidate.
func (m *MCTS) selectAction(n *Node) (game.Action, error) {
	if len(n.actions) == 0 {
		return nil, errors.Wrapf(ErrNoActions, "selecting at node %d (depth %d)", n.id, n.depth)
	}

	candidates := m.candidates(n)
	unexpanded := []int{}
	parentVisits := 0
	for _, i := range candidates {
		if !n.expanded(i) {
			unexpanded = append(unexpanded, i)
		}
		parentVisits += n.stats[n.actions[i].Key()].Visits
	}

	if len(unexpanded) > 0 && math.IsInf(m.config.FPU, 1) {
		if m.config.widening() {
			return n.actions[unexpanded[0]], nil // Best ranked
		}
		return n.actions[unexpanded[m.rng.Intn(len(unexpanded))]], nil
	}

	var policy *uct
	if parentVisits > 0 {
		policy = newUCT(m.config.Exploration, float64(parentVisits))
	}
	best := -1
	bestScore := math.Inf(-1)
	for _, i := range candidates {
		stats := n.stats[n.actions[i].Key()]
		var score float64
		switch {
		case !n.expanded(i):
			score = m.config.FPU
		case stats.Visits == 0 || policy == nil:
			score = math.Inf(1)
		default:
			score = policy.evaluate(stats.Total(n.player), float64(stats.Visits))
		}
		if math.IsNaN(score) {
			return nil, errors.Wrapf(ErrNonFinite, "UCB score of action %s at node %d", n.actions[i].Key(), n.id)
		}
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return n.actions[best], nil
}

// expand links n to the node reached by action, now applied to state. In graph
// search an existing node for the same state is reused.
func (m *MCTS) expand(n *Node, action game.Action, state game.State) *Node {
	key := action.Key()
	if m.config.Graph {
		if shared := m.table.lookup(state.Key()); shared != nil {
			shared.link(n, key)
			n.children[key] = shared
			return shared
		}
	}

	child := m.newNode(n, key, state)
	n.children[key] = child
	if m.config.Graph {
		m.table.insert(child)
	}
	return child
}
