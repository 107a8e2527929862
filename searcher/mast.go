package searcher

import "mcgs/game"

type MASTEntry struct {
	Visits float64
	Total  float64
}

func (e MASTEntry) Mean() float64 {
	return e.Total / e.Visits
}

// MAST (move-average sampling) keeps per-player action statistics gathered
// across all iterations of a search, independent of where actions occur.
type MAST struct {
	// Default is returned for actions never seen.
	Default float64
	// Weight β blends an external heuristic: (1-β)*MAST + β*External.
	Weight   float64
	External game.ActionHeuristic
	// Momentum γ scales all statistics on Decay. Zero keeps plain totals.
	Momentum float64
	// KeyOf reduces an action to the key its statistics are stored under.
	KeyOf func(game.Action) string

	tables []map[string]*MASTEntry
}

func NewMAST(players int) *MAST {
	m := &MAST{}
	m.Reset(players)
	return m
}

// Reset drops all statistics.
func (m *MAST) Reset(players int) {
	m.tables = make([]map[string]*MASTEntry, players)
	for i := range m.tables {
		m.tables[i] = make(map[string]*MASTEntry)
	}
}

func (m *MAST) key(action game.Action) string {
	if m.KeyOf != nil {
		return m.KeyOf(action)
	}
	return action.Key()
}

func (m *MAST) Update(player int, action game.Action, value float64) {
	table := m.tables[player]
	key := m.key(action)
	entry, ok := table[key]
	if !ok {
		entry = &MASTEntry{}
		table[key] = entry
	}
	entry.Visits++
	entry.Total += value
}

// Decay scales every entry of every player by the momentum.
func (m *MAST) Decay() {
	if m.Momentum <= 0 {
		return
	}
	for _, table := range m.tables {
		for _, entry := range table {
			entry.Visits *= m.Momentum
			entry.Total *= m.Momentum
		}
	}
}

// Entry returns the statistics of an action for a player.
func (m *MAST) Entry(player int, action game.Action) (MASTEntry, bool) {
	if player < 0 || player >= len(m.tables) {
		return MASTEntry{}, false
	}
	entry, ok := m.tables[player][m.key(action)]
	if !ok {
		return MASTEntry{}, false
	}
	return *entry, true
}

// Value is the MAST estimate alone, for the player acting in state.
func (m *MAST) Value(action game.Action, state game.State) float64 {
	entry, ok := m.Entry(state.Player(), action)
	if !ok || entry.Visits <= 0 {
		return m.Default
	}
	return entry.Mean()
}

// Evaluate estimates an action for the player acting in state. The context
// actions are the alternatives available in state. The external heuristic is
// never called when the weight is zero.
func (m *MAST) Evaluate(action game.Action, state game.State, context []game.Action) float64 {
	value := m.Value(action, state)
	if m.Weight == 0 || m.External == nil {
		return value
	}
	return (1-m.Weight)*value + m.Weight*m.External(action, state)
}
