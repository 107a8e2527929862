package searcher

// MultiplayerPolicy maps the per-player values of a rollout to the values
// backed up through the tree. Nodes always select by the component of the
// player acting there.
type MultiplayerPolicy interface {
	Mode() MultiplayerMode
	adjust(values []float64) []float64
}

// paranoidPolicy assumes every other player minimizes the paranoid player's
// value, so all other components become its negation.
type paranoidPolicy struct {
	player int
}

func (p paranoidPolicy) Mode() MultiplayerMode {
	return Paranoid
}

func (p paranoidPolicy) adjust(values []float64) []float64 {
	adjusted := make([]float64, len(values))
	for i := range adjusted {
		if i == p.player {
			adjusted[i] = values[p.player]
		} else {
			adjusted[i] = -values[p.player]
		}
	}
	return adjusted
}

// independentPolicy keeps one value per player (max-n).
type independentPolicy struct{}

func (independentPolicy) Mode() MultiplayerMode {
	return Independent
}

func (independentPolicy) adjust(values []float64) []float64 {
	return values
}

// prior builds the value vector seeding an action estimated at value by the
// player acting at a node.
func prior(policy MultiplayerPolicy, players, player int, value float64) []float64 {
	values := make([]float64, players)
	if p, ok := policy.(paranoidPolicy); ok && p.player != player {
		values[p.player] = -value
	} else {
		values[player] = value
	}
	return policy.adjust(values)
}
