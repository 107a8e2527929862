package searcher

import (
	"context"
	"mcgs/experiments/metrics"
	"mcgs/game"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(m *MCTS)

// MCTS is a budgeted Monte Carlo tree search, or graph search when states are
// shared through a transposition table. A search is single threaded; one MCTS
// value must not run two searches at once.
type MCTS struct {
	config          Config
	model           *game.CountingModel
	heuristic       game.Heuristic
	actionHeuristic game.ActionHeuristic
	rolloutPolicy   RolloutPolicy
	mast            *MAST
	mastWeight      float64
	reporter        reporter
	metrics         metrics.Collector
	logger          zerolog.Logger

	// Per search
	rng         *rand.Rand
	multiplayer MultiplayerPolicy
	root        *Node
	table       *transpositions
	nodes       int
	iterations  int
	stopReason  StopReason
	metric      metrics.SearchMetric
}

func WithConfig(config Config) Option {
	return func(m *MCTS) {
		m.config = config
	}
}

func WithIterations(iterations int) Option {
	return func(m *MCTS) {
		m.config.Iterations = iterations
	}
}

func WithDuration(duration time.Duration) Option {
	return func(m *MCTS) {
		m.config.Duration = duration
	}
}

func WithForwardModelCalls(calls int64) Option {
	return func(m *MCTS) {
		m.config.ForwardModelCalls = calls
	}
}

func WithExploration(k float64) Option {
	return func(m *MCTS) {
		m.config.Exploration = k
	}
}

func WithFPU(fpu float64) Option {
	return func(m *MCTS) {
		m.config.FPU = fpu
	}
}

func WithRolloutLength(length int) Option {
	return func(m *MCTS) {
		m.config.RolloutLength = length
	}
}

func WithMaxTreeDepth(depth int) Option {
	return func(m *MCTS) {
		m.config.MaxTreeDepth = depth
	}
}

func WithDiscount(gamma float64) Option {
	return func(m *MCTS) {
		m.config.Discount = gamma
	}
}

func WithWidening(constant, exponent float64) Option {
	return func(m *MCTS) {
		m.config.WideningConstant = constant
		m.config.WideningExponent = exponent
	}
}

func WithInitVisits(visits int) Option {
	return func(m *MCTS) {
		m.config.InitVisits = visits
	}
}

func WithBackup(policy BackupPolicy) Option {
	return func(m *MCTS) {
		m.config.Backup = policy
	}
}

// WithParanoid backs up values as if every other player minimized player's
// value. RootPlayer picks whoever acts at the search root.
func WithParanoid(player int) Option {
	return func(m *MCTS) {
		m.config.Multiplayer = Paranoid
		m.config.ParanoidPlayer = player
	}
}

func WithIndependent() Option {
	return func(m *MCTS) {
		m.config.Multiplayer = Independent
		m.config.ParanoidPlayer = RootPlayer
	}
}

func WithGraph() Option {
	return func(m *MCTS) {
		m.config.Graph = true
	}
}

func WithRecommendation(policy Recommendation) Option {
	return func(m *MCTS) {
		m.config.Recommendation = policy
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.config.Seed = seed
	}
}

func WithRollout(kind RolloutKind) Option {
	return func(m *MCTS) {
		m.config.Rollout = kind
	}
}

func WithEpsilon(epsilon float64) Option {
	return func(m *MCTS) {
		m.config.Rollout = EpsilonGreedyRollout
		m.config.Epsilon = epsilon
	}
}

// WithRolloutPolicy replaces the configured rollout policy.
func WithRolloutPolicy(policy RolloutPolicy) Option {
	return func(m *MCTS) {
		if policy != nil {
			m.rolloutPolicy = policy
		}
	}
}

// WithMAST maintains the MAST table. Unseen actions evaluate to defaultValue.
func WithMAST(defaultValue, temperature, momentum float64) Option {
	return func(m *MCTS) {
		m.config.MAST = true
		m.config.MASTDefault = defaultValue
		m.config.MASTTemperature = temperature
		m.config.MASTMomentum = momentum
	}
}

func WithMASTMode(mode MASTMode) Option {
	return func(m *MCTS) {
		m.config.MASTMode = mode
	}
}

// WithMASTExternal blends an external action heuristic into MAST estimates
// with weight beta.
func WithMASTExternal(beta float64, external game.ActionHeuristic) Option {
	return func(m *MCTS) {
		m.mastWeight = beta
		m.mast.External = external
	}
}

// WithMASTKey stores MAST statistics under a reduced action key.
func WithMASTKey(keyOf func(game.Action) string) Option {
	return func(m *MCTS) {
		m.mast.KeyOf = keyOf
	}
}

func WithKeepMAST() Option {
	return func(m *MCTS) {
		m.config.KeepMAST = true
	}
}

// WithHeuristic sets the evaluation of rollout cutoff states.
func WithHeuristic(heuristic game.Heuristic) Option {
	return func(m *MCTS) {
		if heuristic != nil {
			m.heuristic = heuristic
		}
	}
}

// WithActionHeuristic sets the action estimates used to rank progressive
// widening, seed priors and guide epsilon-greedy rollouts.
func WithActionHeuristic(heuristic game.ActionHeuristic) Option {
	return func(m *MCTS) {
		m.actionHeuristic = heuristic
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *MCTS) {
		m.logger = logger
	}
}

func WithMetrics() Option {
	return func(m *MCTS) {
		m.metrics = metrics.NewCollector()
	}
}

func New(model game.ForwardModel, options ...Option) (*MCTS, error) {
	m := &MCTS{ // Default values
		config:    DefaultConfig(),
		model:     game.NewCountingModel(model),
		heuristic: game.Score,
		mast:      &MAST{},
		metrics:   metrics.NewDummyCollector(),
		logger:    log.Logger,
	}
	for _, option := range options {
		option(m)
	}
	if m.mast.External != nil {
		m.config.MASTWeight = m.mastWeight
	}
	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	m.mast.Default = m.config.MASTDefault
	m.mast.Weight = m.config.MASTWeight
	m.mast.Momentum = m.config.MASTMomentum
	if m.rolloutPolicy == nil {
		switch m.config.Rollout {
		case EpsilonGreedyRollout:
			if m.actionHeuristic == nil {
				m.logger.Warn().Msg("epsilon-greedy rollout without an action heuristic plays uniformly at random")
			}
			m.rolloutPolicy = EpsilonGreedyPolicy{Epsilon: m.config.Epsilon, Heuristic: m.actionHeuristic}
		case MASTRollout:
			m.rolloutPolicy = MASTPolicy{Table: m.mast, Temperature: m.config.MASTTemperature}
		default:
			m.rolloutPolicy = RandomPolicy{}
		}
	}
	m.reporter = newReporter(m.config.Graph)
	return m, nil
}

func (m *MCTS) seed() uint64 {
	if m.config.Seed != 0 {
		return m.config.Seed
	}
	return uint64(time.Now().UnixNano())
}

func (m *MCTS) multiplayerFor(state game.State) (MultiplayerPolicy, error) {
	if m.config.Multiplayer == Independent {
		return independentPolicy{}, nil
	}
	player := m.config.ParanoidPlayer
	if player == RootPlayer {
		player = state.Player()
	}
	if player < 0 || player >= state.Players() {
		return nil, errors.Wrapf(ErrPolicyMismatch, "paranoid player %d in a %d-player game", player, state.Players())
	}
	return paranoidPolicy{player: player}, nil
}

// Search runs iterations from state until the budget is spent or ctx is
// cancelled, then recommends an action. The state is never mutated. All
// search structures from a previous search are discarded first.
func (m *MCTS) Search(ctx context.Context, state game.State) (game.Action, error) {
	multiplayer, err := m.multiplayerFor(state)
	if err != nil {
		return nil, err
	}
	m.multiplayer = multiplayer
	m.rng = rand.New(rand.NewSource(m.seed()))
	m.model.Reset()
	m.nodes = 0
	m.iterations = 0
	m.stopReason = StopNone
	m.table = nil
	if !m.config.KeepMAST || len(m.mast.tables) != state.Players() {
		m.mast.Reset(state.Players())
	} else if m.config.MASTMomentum > 0 {
		m.mast.Decay()
	}

	m.root = m.newNode(nil, "", state)
	if m.config.Graph {
		m.table = newTranspositions()
		m.table.insert(m.root)
	}
	if len(m.root.actions) == 0 {
		return nil, errors.Wrap(ErrNoActions, "cannot search from a state without actions")
	}

	m.metrics.Start(m.config.Graph)
	limit := newLimiter(m.config.budget(), m.model.Calls)
	for {
		if reason := limit.check(ctx, m.iterations); reason != StopNone {
			m.stopReason = reason
			break
		}
		if err := m.iterate(state); err != nil {
			return nil, errors.WithMessagef(err, "search iteration %d", m.iterations+1)
		}
		m.iterations++
		m.metrics.AddIteration()
	}
	m.metric = m.metrics.Complete(m.nodes, m.model.Calls(), m.stopReason.String())

	if m.iterations == 0 {
		m.logger.Warn().Msgf("no search iteration completed (%s), playing the first action", m.stopReason)
	}
	action := recommend(m.config.Recommendation, m.root)
	m.logger.Debug().Msgf("searched %d iterations in %v (stopped by %s), %d nodes, %d forward model calls, recommending %s",
		m.iterations, limit.elapsed(), m.stopReason, m.nodes, m.model.Calls(), action.Key())
	return action, nil
}

// iterate runs one select, expand, rollout and backup cycle. Once started it
// always runs to completion.
func (m *MCTS) iterate(rootState game.State) error {
	state := rootState.Copy()
	node := m.root
	node.arrivals++

	path := make([]step, 0, 16)
	for !node.terminal && len(path) < m.config.MaxTreeDepth {
		action, err := m.selectAction(node)
		if err != nil {
			return err
		}
		m.model.Next(state, action)
		path = append(path, step{node: node, action: action})

		child, ok := node.children[action.Key()]
		if !ok {
			node = m.expand(node, action, state)
			break
		}
		node = child
	}

	result, err := m.rollout(state)
	if err != nil {
		return err
	}
	if result.terminal {
		m.metrics.AddFullPlayout()
	}

	values := m.multiplayer.adjust(result.values)
	backup(m.config.Backup, path, node, values)
	if m.config.usesMAST() {
		m.updateMAST(path, result.actions, values)
	}
	return nil
}

// RunSearch runs a single search with the given budget and configuration.
func RunSearch(ctx context.Context, model game.ForwardModel, root game.State, budget Budget, config Config, options ...Option) (game.Action, error) {
	config.Iterations = budget.Iterations
	config.Duration = budget.Duration
	config.ForwardModelCalls = budget.ForwardModelCalls
	m, err := New(model, append([]Option{WithConfig(config)}, options...)...)
	if err != nil {
		return nil, err
	}
	return m.Search(ctx, root)
}

type RootStatistics struct {
	Actions    []game.Action
	Visits     map[string]int     // By action key
	Means      map[string]float64 // From the root player's perspective
	Iterations int
}

// RootStatistics reports the root's action statistics of the last search.
func (m *MCTS) RootStatistics() RootStatistics {
	stats := RootStatistics{
		Visits:     map[string]int{},
		Means:      map[string]float64{},
		Iterations: m.iterations,
	}
	if m.root == nil {
		return stats
	}
	stats.Actions = m.root.actions
	for _, action := range m.root.actions {
		s := m.root.stats[action.Key()]
		stats.Visits[action.Key()] = s.Visits
		stats.Means[action.Key()] = s.Mean(m.root.player)
	}
	return stats
}

// TreeStatistics reports the shape of the last search's tree or graph.
func (m *MCTS) TreeStatistics() TreeReport {
	return m.reporter.report(m.root, m.table, m.config.MaxReportDepth)
}

func (m *MCTS) Root() *Node {
	return m.root
}

// Lookup returns the shared node of a state in graph search, nil otherwise.
func (m *MCTS) Lookup(state game.State) *Node {
	if m.table == nil {
		return nil
	}
	return m.table.lookup(state.Key())
}

func (m *MCTS) Config() Config {
	return m.config
}

func (m *MCTS) MAST() *MAST {
	return m.mast
}

func (m *MCTS) StopReason() StopReason {
	return m.stopReason
}

func (m *MCTS) Metric() metrics.SearchMetric {
	return m.metric
}

// ForwardModelCalls is the number of Next calls made by the last search.
func (m *MCTS) ForwardModelCalls() int64 {
	return m.model.Calls()
}
