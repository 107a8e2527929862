package searcher

import (
	"mcgs/game"
)

// ActionStats accumulates the results of playing one action from a node.
// Values holds one total per player.
type ActionStats struct {
	Visits int
	Values []float64
}

func newActionStats(players int) *ActionStats {
	return &ActionStats{Values: make([]float64, players)}
}

func (s *ActionStats) update(values []float64) {
	s.Visits++
	for i, v := range values {
		s.Values[i] += v
	}
}

// Total is the accumulated value from a player's perspective.
func (s *ActionStats) Total(player int) float64 {
	return s.Values[player]
}

func (s *ActionStats) Mean(player int) float64 {
	if s.Visits == 0 {
		return 0
	}
	return s.Values[player] / float64(s.Visits)
}

// edge is an action taken from a node.
type edge struct {
	node   *Node
	action string
}

// Node is a vertex of the search tree, or of the search graph when nodes are
// shared through the transposition table.
type Node struct {
	id       int
	parent   *Node  // Node that first created this one, nil at the root
	parents  []edge // Every edge leading here (one in tree search)
	depth    int
	terminal bool
	player   int
	key      string // Canonical state key, graph search only

	actions  []game.Action
	stats    map[string]*ActionStats
	children map[string]*Node

	// Progressive widening only: action estimates and indices ranked by them
	estimates []float64
	ranked    []int

	// Visits counts the iterations that passed through one of the node's
	// actions, so it always equals the sum of its action visits.
	visits int
	// arrivals counts backups entering the node, including those that
	// started their rollout here.
	arrivals int
}

func (n *Node) ID() int {
	return n.id
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Depth() int {
	return n.depth
}

func (n *Node) Terminal() bool {
	return n.terminal
}

func (n *Node) Player() int {
	return n.player
}

func (n *Node) Visits() int {
	return n.visits
}

func (n *Node) Arrivals() int {
	return n.arrivals
}

func (n *Node) Actions() []game.Action {
	return n.actions
}

// Stats returns the statistics of an action, or nil if it is not available here.
func (n *Node) Stats(action game.Action) *ActionStats {
	return n.stats[action.Key()]
}

// Child returns the node an action leads to, or nil if it was never expanded.
func (n *Node) Child(action game.Action) *Node {
	return n.children[action.Key()]
}

func (n *Node) Children() int {
	return len(n.children)
}

func (n *Node) expanded(i int) bool {
	_, ok := n.children[n.actions[i].Key()]
	return ok
}

// priorOnly reports whether no iteration has ever passed through the node.
func (n *Node) priorOnly() bool {
	return n.visits == 0
}

// link records a new edge into the node.
func (n *Node) link(parent *Node, action string) {
	n.parents = append(n.parents, edge{node: parent, action: action})
}

// credit backs up one pass through an action of the node.
func (n *Node) credit(action string, values []float64) {
	n.stats[action].update(values)
	n.visits++
	if child, ok := n.children[action]; ok {
		child.arrivals++
	}
}
