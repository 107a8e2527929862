package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Duration          time.Duration
	Iterations        int
	FullPlayouts      int
	ForwardModelCalls int64
	Nodes             int
	StopReason        string
	IsGraph           bool
}

type MoveMetric struct {
	Step   int
	Player int
	Action string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Winner         int // -1 when no single winner
	Scores         []float64
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(graph bool)
	AddFullPlayout()
	AddIteration()
	Complete(nodes int, calls int64, reason string) SearchMetric
}

type collector struct {
	graph        bool
	startTime    time.Time
	iterations   atomic.Int32
	fullPlayouts atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(graph bool) {
	m.startTime = time.Now()
	m.graph = graph
	m.iterations.Store(0)
	m.fullPlayouts.Store(0)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddIteration() {
	m.iterations.Add(1)
}

func (m *collector) Complete(nodes int, calls int64, reason string) SearchMetric {
	return SearchMetric{
		Duration:          time.Since(m.startTime),
		Iterations:        int(m.iterations.Load()),
		FullPlayouts:      int(m.fullPlayouts.Load()),
		ForwardModelCalls: calls,
		Nodes:             nodes,
		StopReason:        reason,
		IsGraph:           m.graph,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(graph bool) {}
func (m *dummyCollector) AddFullPlayout()  {}
func (m *dummyCollector) AddIteration()    {}
func (m *dummyCollector) Complete(nodes int, calls int64, reason string) SearchMetric {
	return SearchMetric{}
}
