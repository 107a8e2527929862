package searcher

import "mcgs/game"

// transpositions maps canonical state keys to the node shared by every path
// reaching that state. Buckets are keyed by hash and resolved by full key.
type transpositions struct {
	buckets map[game.StateHash][]*Node
	order   []*Node // Insertion order, for deterministic iteration
}

func newTranspositions() *transpositions {
	return &transpositions{buckets: make(map[game.StateHash][]*Node)}
}

func (t *transpositions) lookup(key string) *Node {
	for _, node := range t.buckets[game.Hash(key)] {
		if node.key == key {
			return node
		}
	}
	return nil
}

func (t *transpositions) insert(node *Node) {
	hash := game.Hash(node.key)
	t.buckets[hash] = append(t.buckets[hash], node)
	t.order = append(t.order, node)
}

func (t *transpositions) size() int {
	return len(t.order)
}

func (t *transpositions) nodes() []*Node {
	return t.order
}
