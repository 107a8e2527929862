package searcher

import (
	"math"
	"mcgs/game"
)

// recommend picks the root action to play. Without any visits the first
// available action is returned.
func recommend(policy Recommendation, root *Node) game.Action {
	if len(root.actions) == 0 {
		return nil
	}
	if root.visits == 0 {
		return root.actions[0]
	}

	switch policy {
	case Subgoal:
		return bestByValue(root, pooledMean)
	case SimpleMean:
		return bestByValue(root, edgeMean)
	default:
		return robustChild(root)
	}
}

// robustChild picks the most visited action. When every action has the same
// visit count this carries no information and the best mean is used instead.
func robustChild(root *Node) game.Action {
	best := 0
	bestVisits := -1
	allEqual := true
	for i, action := range root.actions {
		visits := root.stats[action.Key()].Visits
		if i > 0 && visits != bestVisits {
			allEqual = false
		}
		if visits > bestVisits {
			best = i
			bestVisits = visits
		}
	}
	if allEqual && len(root.actions) > 1 {
		return bestByValue(root, edgeMean)
	}
	return root.actions[best]
}

// edgeMean is the mean value of an action as seen from the root.
func edgeMean(root *Node, action game.Action) float64 {
	stats := root.stats[action.Key()]
	if stats.Visits == 0 {
		return math.Inf(-1)
	}
	return stats.Mean(root.player)
}

// pooledMean values an action by the successor it leads to, using every
// visit that successor received through the graph rather than only those
// arriving from the root.
func pooledMean(root *Node, action game.Action) float64 {
	child := root.children[action.Key()]
	if child == nil || child.visits == 0 {
		return edgeMean(root, action)
	}
	total := 0.0
	visits := 0
	for _, a := range child.actions {
		stats := child.stats[a.Key()]
		total += stats.Total(root.player)
		visits += stats.Visits
	}
	return total / float64(visits)
}

// bestByValue picks the action with the highest value; ties go to the more
// visited action, then to the earlier one.
func bestByValue(root *Node, value func(*Node, game.Action) float64) game.Action {
	best := 0
	bestValue := math.Inf(-1)
	bestVisits := -1
	for i, action := range root.actions {
		v := value(root, action)
		visits := root.stats[action.Key()].Visits
		if v > bestValue || (v == bestValue && visits > bestVisits) {
			best = i
			bestValue = v
			bestVisits = visits
		}
	}
	return root.actions[best]
}
