package main

import (
	"context"
	"flag"
	"fmt"
	"mcgs/experiments"
	"mcgs/experiments/metrics"
	"mcgs/searcher"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/janpfeifer/must"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	flagExperiment = flag.String("experiment", "", "Experiment YAML file. When set, plays its match ups "+
		"instead of running a single search.")
	flagThroughput = flag.Bool("throughput", false, "Measure iterations per second of every -params "+
		"configuration, separated by ';'.")
	flagRepetitions = flag.Int("repetitions", 5, "Searches per configuration with -throughput.")
	flagParams      = flag.String("params", "iterations=1000", "Searcher parameters, e.g. "+
		"\"iterations=500,graph,backup=both,mast\".")
	flagGame     = flag.String("game", "nim", "Game to search: nim or lmr.")
	flagPlayers  = flag.Int("players", 2, "Number of nim players.")
	flagPile     = flag.Int("pile", 21, "Nim pile size.")
	flagMaxTake  = flag.Int("max_take", 3, "Most stones a nim player may take.")
	flagTurns    = flag.Int("turns", 6, "Number of left-middle-right turns.")
	flagLogLevel = flag.String("log_level", "info", "zerolog level.")
)

func main() {
	flag.Parse()
	level := must.M1(zerolog.ParseLevel(*flagLogLevel))
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	// Capture Control+C: searches stop at the next iteration boundary.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := termenv.NewOutput(os.Stdout)
	switch {
	case *flagExperiment != "":
		runExperiment(ctx, out)
	case *flagThroughput:
		runThroughput(ctx, out)
	default:
		runSearch(ctx, out)
	}
}

func gameConfig() experiments.GameConfig {
	return experiments.GameConfig{
		Kind:    *flagGame,
		Players: *flagPlayers,
		Pile:    *flagPile,
		MaxTake: *flagMaxTake,
		Turns:   *flagTurns,
	}
}

func title(out *termenv.Output, s string) termenv.Style {
	return out.String(s).Bold().Foreground(out.Color("12"))
}

func runSearch(ctx context.Context, out *termenv.Output) {
	model, state := must.M2(gameConfig().New())
	cfg := must.M1(searcher.ParseConfig(*flagParams))
	mcts := must.M1(searcher.New(model, searcher.WithConfig(cfg), searcher.WithMetrics()))
	action := must.M1(mcts.Search(ctx, state))

	stats := mcts.RootStatistics()
	fmt.Fprintln(out, title(out, "Search"))
	metric := mcts.Metric()
	fmt.Fprintf(out, "  %d iterations in %v, stopped by %s, %d forward model calls\n",
		metric.Iterations, metric.Duration, mcts.StopReason(), metric.ForwardModelCalls)
	for _, a := range stats.Actions {
		line := fmt.Sprintf("  %-6s visits=%-6d mean=%.3f", a.Key(), stats.Visits[a.Key()], stats.Means[a.Key()])
		if a.Key() == action.Key() {
			fmt.Fprintln(out, out.String(line).Foreground(out.Color("10")).Bold())
			continue
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, title(out, "Structure"))
	fmt.Fprintf(out, "  %s\n", mcts.TreeStatistics())
}

func runExperiment(ctx context.Context, out *termenv.Output) {
	e := must.M1(experiments.LoadExperiment(*flagExperiment))
	result := must.M1(experiments.Run(ctx, e))

	fmt.Fprintln(out, title(out, e.Name))
	for _, s := range result.Summary {
		rate := 0.0
		if s.Games > 0 {
			rate = float64(s.Wins) / float64(s.Games)
		}
		fmt.Fprintf(out, "  %-12s %s  wins=%d/%d score=%.3f iterations=%.1f\n",
			s.Agent.Name, out.String(fmt.Sprintf("%5.1f%%", 100*rate)).Bold(), s.Wins, s.Games, s.MeanScore, s.MeanIterations)
	}
	if result.Dir != "" {
		fmt.Fprintf(out, "  records in %s\n", result.Dir)
	}
}

func runThroughput(ctx context.Context, out *termenv.Output) {
	var agents []metrics.AgentConfig
	for i, params := range strings.Split(*flagParams, ";") {
		agents = append(agents, metrics.AgentConfig{ID: i + 1, Name: fmt.Sprintf("config%d", i+1), Params: params})
	}
	results := must.M1(experiments.RunThroughput(ctx, gameConfig(), agents, *flagRepetitions))
	sort.SliceStable(results, func(a, b int) bool { return results[a].IterationsPerSec > results[b].IterationsPerSec })

	fmt.Fprintln(out, title(out, "Throughput"))
	for _, r := range results {
		fmt.Fprintf(out, "  %s %.0f±%.0f iterations/s, %.1f nodes, %.0f forward model calls  (%s)\n",
			out.String(r.Agent.Name).Bold(), r.IterationsPerSec, r.IterationsStdDev, r.MeanNodes, r.MeanForwardCalls, r.Agent.Params)
	}
}
