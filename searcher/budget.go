package searcher

import (
	"context"
	"strings"
	"time"
)

type StopReason int

const (
	StopNone       StopReason = 0
	StopInterrupt  StopReason = 1 // Context cancelled
	StopIterations StopReason = 2
	StopDuration   StopReason = 4
	StopCalls      StopReason = 8 // Forward model call budget spent
)

func (sr StopReason) String() string {
	if sr == StopNone {
		return "None"
	}

	reasons := []struct {
		flag StopReason
		name string
	}{
		{StopInterrupt, "Interrupt"},
		{StopIterations, "Iterations"},
		{StopDuration, "Duration"},
		{StopCalls, "Calls"},
	}

	names := []string{}
	for _, r := range reasons {
		if sr&r.flag == r.flag {
			names = append(names, r.name)
		}
	}
	return strings.Join(names, "|")
}

// Budget bounds a search. Zero fields are unlimited; at least one must be set.
type Budget struct {
	Iterations        int
	Duration          time.Duration
	ForwardModelCalls int64
}

func (c Config) budget() Budget {
	return Budget{
		Iterations:        c.Iterations,
		Duration:          c.Duration,
		ForwardModelCalls: c.ForwardModelCalls,
	}
}

// limiter is checked once per completed iteration; an iteration is never cut
// short.
type limiter struct {
	budget Budget
	start  time.Time
	calls  func() int64
}

func newLimiter(budget Budget, calls func() int64) *limiter {
	return &limiter{budget: budget, start: time.Now(), calls: calls}
}

func (l *limiter) elapsed() time.Duration {
	return time.Since(l.start)
}

// check returns every limit that has been reached after the given number of
// completed iterations.
func (l *limiter) check(ctx context.Context, iterations int) StopReason {
	reason := StopNone
	if ctx.Err() != nil {
		reason |= StopInterrupt
	}
	if l.budget.Iterations > 0 && iterations >= l.budget.Iterations {
		reason |= StopIterations
	}
	if l.budget.Duration > 0 && l.elapsed() >= l.budget.Duration {
		reason |= StopDuration
	}
	if l.budget.ForwardModelCalls > 0 && l.calls() >= l.budget.ForwardModelCalls {
		reason |= StopCalls
	}
	return reason
}
