package game

import "sync/atomic"

// CountingModel wraps a ForwardModel and counts calls to Next and Actions.
type CountingModel struct {
	ForwardModel
	nexts   atomic.Int64
	actions atomic.Int64
}

func NewCountingModel(model ForwardModel) *CountingModel {
	return &CountingModel{ForwardModel: model}
}

func (m *CountingModel) Next(state State, action Action) {
	m.nexts.Add(1)
	m.ForwardModel.Next(state, action)
}

func (m *CountingModel) Actions(state State) []Action {
	m.actions.Add(1)
	return m.ForwardModel.Actions(state)
}

// Calls returns the number of Next calls since creation or the last Reset.
func (m *CountingModel) Calls() int64 {
	return m.nexts.Load()
}

func (m *CountingModel) ActionCalls() int64 {
	return m.actions.Load()
}

func (m *CountingModel) Reset() {
	m.nexts.Store(0)
	m.actions.Store(0)
}
