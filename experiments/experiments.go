package experiments

import (
	"context"
	"fmt"
	"mcgs/engine"
	"mcgs/experiments/metrics"
	"mcgs/game"
	"mcgs/game/lmr"
	"mcgs/game/nim"
	"mcgs/searcher"
	"mcgs/searcher/agent"
	"os"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// GameConfig selects and sizes one of the bundled games.
type GameConfig struct {
	Kind    string `yaml:"kind"` // "nim" or "lmr"
	Players int    `yaml:"players"`
	Pile    int    `yaml:"pile"`
	MaxTake int    `yaml:"max_take"`
	Turns   int    `yaml:"turns"`
}

func (g GameConfig) New() (game.ForwardModel, game.State, error) {
	switch g.Kind {
	case "nim":
		if g.Players < 1 || g.Pile < 1 || g.MaxTake < 1 {
			return nil, nil, errors.Errorf("nim needs positive players, pile and max_take, got %+v", g)
		}
		return nim.Model{}, nim.New(g.Players, g.Pile, g.MaxTake), nil
	case "lmr":
		if g.Turns < 1 {
			return nil, nil, errors.Errorf("lmr needs positive turns, got %d", g.Turns)
		}
		return lmr.Model{}, lmr.New(g.Turns), nil
	default:
		return nil, nil, errors.Errorf("unknown game %q", g.Kind)
	}
}

type Experiment struct {
	Name     string                `yaml:"name"`
	Game     GameConfig            `yaml:"game"`
	Games    int                   `yaml:"games"` // Per match up
	Agents   []metrics.AgentConfig `yaml:"agents"`
	MatchUps [][]int               `yaml:"match_ups"` // Agent IDs per seat
	Parallel int                   `yaml:"parallel"`
	Output   string                `yaml:"output"` // Directory for CSV records, none when empty
	MaxMoves int                   `yaml:"max_moves"`
}

func LoadExperiment(path string) (Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Experiment{}, errors.Wrapf(err, "failed to read experiment %q", path)
	}
	var e Experiment
	if err := yaml.Unmarshal(data, &e); err != nil {
		return Experiment{}, errors.Wrapf(err, "failed to parse experiment %q", path)
	}
	return e, e.validate()
}

func (e Experiment) agent(id int) (metrics.AgentConfig, bool) {
	for _, config := range e.Agents {
		if config.ID == id {
			return config, true
		}
	}
	return metrics.AgentConfig{}, false
}

func (e Experiment) validate() error {
	if e.Name == "" {
		return errors.New("experiment needs a name")
	}
	if e.Games <= 0 {
		return errors.Errorf("experiment %s needs a positive number of games", e.Name)
	}
	_, state, err := e.Game.New()
	if err != nil {
		return err
	}
	for _, config := range e.Agents {
		if _, err := searcher.ParseConfig(config.Params); err != nil {
			return errors.WithMessagef(err, "agent %d", config.ID)
		}
	}
	for i, matchUp := range e.MatchUps {
		if len(matchUp) != state.Players() {
			return errors.Errorf("match up %d seats %d agents for %d players", i, len(matchUp), state.Players())
		}
		for _, id := range matchUp {
			if _, ok := e.agent(id); !ok {
				return errors.Errorf("match up %d uses unknown agent %d", i, id)
			}
		}
	}
	return nil
}

// AgentSummary aggregates the games an agent played.
type AgentSummary struct {
	Agent          metrics.AgentConfig
	Games          int
	Wins           int
	MeanScore      float64
	MeanIterations float64
}

type Result struct {
	Games   []metrics.GameRecord
	Moves   []metrics.MoveRecord
	Summary []AgentSummary
	Dir     string // Where records were written, if anywhere
}

// Run plays every match up the configured number of times, running up to
// Parallel games at once, and writes the records if an output is set.
func Run(ctx context.Context, e Experiment) (Result, error) {
	if err := e.validate(); err != nil {
		return Result{}, err
	}
	log.Info().Msgf("starting %s experiment...", e.Name)

	type job struct {
		id     int
		agents []int
	}
	jobs := []job{}
	for _, matchUp := range e.MatchUps {
		for i := 0; i < e.Games; i++ {
			jobs = append(jobs, job{id: len(jobs) + 1, agents: matchUp})
		}
	}

	var mu sync.Mutex
	result := Result{}
	g, ctx := errgroup.WithContext(ctx)
	if e.Parallel > 0 {
		g.SetLimit(e.Parallel)
	}
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			gameMetric, moveMetrics, err := e.runGame(ctx, j.id, j.agents)
			if err != nil {
				return errors.WithMessagef(err, "game %d", j.id)
			}

			mu.Lock()
			defer mu.Unlock()
			result.Games = append(result.Games, metrics.GameRecord{ID: j.id, Agents: j.agents, GameMetric: gameMetric})
			for _, mm := range moveMetrics {
				result.Moves = append(result.Moves, metrics.MoveRecord{Game: j.id, Agent: j.agents[mm.Player], MoveMetric: mm})
			}
			log.Info().Msgf("completed game %d of %d with winner: %d", j.id, len(jobs), gameMetric.Winner)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	sort.Slice(result.Games, func(a, b int) bool { return result.Games[a].ID < result.Games[b].ID })
	sort.SliceStable(result.Moves, func(a, b int) bool {
		if result.Moves[a].Game != result.Moves[b].Game {
			return result.Moves[a].Game < result.Moves[b].Game
		}
		return result.Moves[a].Step < result.Moves[b].Step
	})
	result.Summary = e.summarize(result)
	log.Info().Msgf("completed %s experiment", e.Name)

	if e.Output == "" {
		return result, nil
	}
	dir, err := e.store(result)
	if err != nil {
		return result, err
	}
	result.Dir = dir
	return result, nil
}

func (e Experiment) runGame(ctx context.Context, id int, seats []int) (metrics.GameMetric, []metrics.MoveMetric, error) {
	model, state, err := e.Game.New()
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}

	agents := make([]agent.Agent, len(seats))
	for seat, agentID := range seats {
		config, _ := e.agent(agentID)
		cfg, err := searcher.ParseConfig(config.Params)
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
		if cfg.Seed != 0 {
			// Distinct but reproducible seeds per game and seat
			cfg.Seed += uint64(id*len(seats) + seat)
		}
		mcts, err := searcher.New(model, searcher.WithConfig(cfg), searcher.WithMetrics())
		if err != nil {
			return metrics.GameMetric{}, nil, err
		}
		agents[seat] = agent.NewEvaluationAgent(mcts)
	}

	local, err := engine.NewLocal(model, state, agents, e.MaxMoves)
	if err != nil {
		return metrics.GameMetric{}, nil, err
	}
	return local.Run(ctx)
}

func (e Experiment) summarize(result Result) []AgentSummary {
	scores := map[int][]float64{}
	iterations := map[int][]float64{}
	summaries := map[int]*AgentSummary{}
	for _, config := range e.Agents {
		summaries[config.ID] = &AgentSummary{Agent: config}
	}

	for _, record := range result.Games {
		for seat, id := range record.Agents {
			summaries[id].Games++
			if record.Winner == seat {
				summaries[id].Wins++
			}
			scores[id] = append(scores[id], record.Scores[seat])
		}
	}
	for _, record := range result.Moves {
		iterations[record.Agent] = append(iterations[record.Agent], float64(record.Iterations))
	}

	out := make([]AgentSummary, 0, len(e.Agents))
	for _, config := range e.Agents {
		s := summaries[config.ID]
		if len(scores[config.ID]) > 0 {
			s.MeanScore = stat.Mean(scores[config.ID], nil)
		}
		if len(iterations[config.ID]) > 0 {
			s.MeanIterations = stat.Mean(iterations[config.ID], nil)
		}
		out = append(out, *s)
	}
	return out
}

func (e Experiment) store(result Result) (string, error) {
	writer, err := metrics.NewWriter(e.Output, e.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	if err := writer.WriteAgentConfigs(e.Agents); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	if err := writer.WriteGameRecords(result.Games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(result.Moves); err != nil {
		return "", fmt.Errorf("failed to write move records: %w", err)
	}
	log.Info().Msg("stored move records")
	return writer.Dir(), nil
}
