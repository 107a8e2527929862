package searcher

import "mcgs/game"

// step is one action taken from a node during the selection of an iteration.
type step struct {
	node   *Node
	action game.Action
}

// backup credits values to the edges of an iteration. Natural-parent backup
// credits each step of the path, repeated steps included. Transposition
// backup walks every recorded edge leading to the rollout start, crediting
// each edge at most once per iteration, so it terminates on cyclic graphs.
// With both, the walk skips edges already credited along the path.
func backup(policy BackupPolicy, path []step, leaf *Node, values []float64) {
	credited := make(map[edge]bool, len(path))

	if policy == NaturalParent || policy == Both {
		for i := len(path) - 1; i >= 0; i-- {
			e := edge{node: path[i].node, action: path[i].action.Key()}
			e.node.credit(e.action, values)
			credited[e] = true
		}
	}

	if policy == Transposition || policy == Both {
		queue := []*Node{leaf}
		seen := map[*Node]bool{leaf: true}
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			for _, e := range node.parents {
				if !credited[e] {
					e.node.credit(e.action, values)
					credited[e] = true
				}
				if !seen[e.node] {
					seen[e.node] = true
					queue = append(queue, e.node)
				}
			}
		}
	}
}

// updateMAST records the actions of an iteration in the MAST table, each with
// the value of the player who took it.
func (m *MCTS) updateMAST(path []step, rollout []played, values []float64) {
	mode := m.config.MASTMode
	if mode == MASTTreeOnly || mode == MASTBoth {
		for _, s := range path {
			m.mast.Update(s.node.player, s.action, values[s.node.player])
		}
	}
	if mode == MASTRolloutOnly || mode == MASTBoth {
		for _, p := range rollout {
			m.mast.Update(p.player, p.action, values[p.player])
		}
	}
}
