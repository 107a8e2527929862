package searcher

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// TreeReport describes the shape of a finished search structure.
type TreeReport struct {
	Nodes          int
	MaxDepth       int   // Deepest depth reported
	DepthHistogram []int // Nodes per depth
	// LeafFraction is the share of nodes no iteration passed through yet
	// (terminal nodes and rollout starts whose actions hold only priors).
	LeafFraction  float64
	MeanBranching float64 // Mean number of actions of non-terminal nodes
	MeanExpanded  float64 // Mean fraction of actions with a child, over non-terminal nodes
}

func (r TreeReport) String() string {
	b := strings.Builder{}
	fmt.Fprintf(&b, "nodes=%d leaves=%.3f branching=%.2f expanded=%.3f depths=", r.Nodes, r.LeafFraction, r.MeanBranching, r.MeanExpanded)
	for depth, count := range r.DepthHistogram {
		if depth > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, "%d", count)
	}
	return b.String()
}

// reporter builds a TreeReport for one topology.
type reporter interface {
	report(root *Node, table *transpositions, maxDepth int) TreeReport
}

func newReporter(graph bool) reporter {
	if graph {
		return graphReporter{}
	}
	return treeReporter{}
}

// treeReporter walks children breadth first down to the report depth.
type treeReporter struct{}

func (treeReporter) report(root *Node, _ *transpositions, maxDepth int) TreeReport {
	acc := newReportAccumulator(maxDepth)
	if root == nil {
		return acc.build()
	}

	queue := []*Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		acc.add(node, node.depth)
		if node.depth >= maxDepth {
			continue
		}
		for _, action := range node.actions {
			if child, ok := node.children[action.Key()]; ok {
				queue = append(queue, child)
			}
		}
	}
	return acc.build()
}

// graphReporter reads every node of the transposition table once, grouped
// by the depth it was created at.
type graphReporter struct{}

func (graphReporter) report(root *Node, table *transpositions, maxDepth int) TreeReport {
	acc := newReportAccumulator(maxDepth)
	if table == nil {
		return acc.build()
	}
	for _, node := range table.nodes() {
		if node.depth > maxDepth {
			continue
		}
		acc.add(node, node.depth)
	}
	return acc.build()
}

type reportAccumulator struct {
	maxDepth  int
	histogram []int
	leaves    int
	nodes     int
	branching []float64
	expanded  []float64
}

func newReportAccumulator(maxDepth int) *reportAccumulator {
	return &reportAccumulator{maxDepth: maxDepth, histogram: make([]int, maxDepth+1)}
}

func (a *reportAccumulator) add(node *Node, depth int) {
	a.nodes++
	a.histogram[depth]++
	if node.priorOnly() {
		a.leaves++
	}
	if node.terminal || len(node.actions) == 0 {
		return
	}
	a.branching = append(a.branching, float64(len(node.actions)))
	a.expanded = append(a.expanded, float64(len(node.children))/float64(len(node.actions)))
}

func (a *reportAccumulator) build() TreeReport {
	report := TreeReport{Nodes: a.nodes}

	// Trim empty depths below the deepest node
	deepest := -1
	for depth, count := range a.histogram {
		if count > 0 {
			deepest = depth
		}
	}
	report.MaxDepth = deepest
	report.DepthHistogram = append([]int(nil), a.histogram[:deepest+1]...)

	if a.nodes > 0 {
		report.LeafFraction = float64(a.leaves) / float64(a.nodes)
	}
	if len(a.branching) > 0 {
		report.MeanBranching = stat.Mean(a.branching, nil)
		report.MeanExpanded = stat.Mean(a.expanded, nil)
	}
	return report
}
