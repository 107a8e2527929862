package searcher

import (
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type BackupPolicy string

const (
	// NaturalParent credits the path taken by the iteration.
	NaturalParent BackupPolicy = "natural_parent"
	// Transposition credits every recorded predecessor edge of the rollout
	// start, following the shared graph up to the root.
	Transposition BackupPolicy = "transposition"
	Both          BackupPolicy = "both"
)

type MultiplayerMode string

const (
	Paranoid    MultiplayerMode = "paranoid"
	Independent MultiplayerMode = "independent"
)

type RolloutKind string

const (
	RandomRollout        RolloutKind = "random"
	EpsilonGreedyRollout RolloutKind = "epsilon_greedy"
	MASTRollout          RolloutKind = "mast"
)

// MASTMode selects which actions of an iteration update the MAST table.
type MASTMode string

const (
	MASTRolloutOnly MASTMode = "rollout"
	MASTTreeOnly    MASTMode = "tree"
	MASTBoth        MASTMode = "both"
)

type Recommendation string

const (
	RobustChild Recommendation = "robust_child"
	Subgoal     Recommendation = "subgoal"
	SimpleMean  Recommendation = "simple_mean"
)

const (
	DefaultRolloutLength  = 10
	DefaultMaxTreeDepth   = 1000
	DefaultEpsilon        = 0.1
	DefaultTemperature    = 0.1
	DefaultMaxReportDepth = 100
	// RootPlayer makes the paranoid player whoever acts at the search root.
	RootPlayer = -1
)

// Config is the recognized option set of a search. Function-valued options
// (heuristics, custom rollout policies) are set through Option values.
type Config struct {
	Iterations        int           `yaml:"iterations"`
	Duration          time.Duration `yaml:"duration"`
	ForwardModelCalls int64         `yaml:"forward_model_calls"`

	Exploration float64 `yaml:"exploration"`
	// FPU bounds the score of an action that has no child yet. The default
	// +Inf expands every candidate before any is revisited.
	FPU              float64 `yaml:"fpu"`
	MaxTreeDepth     int     `yaml:"max_tree_depth"`
	WideningConstant float64 `yaml:"widening_constant"`
	WideningExponent float64 `yaml:"widening_exponent"`
	InitVisits       int     `yaml:"init_visits"`

	Rollout       RolloutKind `yaml:"rollout"`
	RolloutLength int         `yaml:"rollout_length"`
	Epsilon       float64     `yaml:"epsilon"`
	Discount      float64     `yaml:"discount"`

	Backup         BackupPolicy    `yaml:"backup"`
	Multiplayer    MultiplayerMode `yaml:"multiplayer"`
	ParanoidPlayer int             `yaml:"paranoid_player"`

	MAST            bool     `yaml:"mast"`
	MASTMode        MASTMode `yaml:"mast_mode"`
	MASTWeight      float64  `yaml:"mast_weight"`
	MASTTemperature float64  `yaml:"mast_temperature"`
	MASTMomentum    float64  `yaml:"mast_momentum"`
	MASTDefault     float64  `yaml:"mast_default"`
	KeepMAST        bool     `yaml:"keep_mast"`

	Graph          bool           `yaml:"graph"`
	Recommendation Recommendation `yaml:"recommendation"`
	Seed           uint64         `yaml:"seed"` // 0 draws a fresh seed per search
	MaxReportDepth int            `yaml:"max_report_depth"`
}

func DefaultConfig() Config {
	return Config{
		Exploration:     Exploration,
		FPU:             math.Inf(1),
		MaxTreeDepth:    DefaultMaxTreeDepth,
		Rollout:         RandomRollout,
		RolloutLength:   DefaultRolloutLength,
		Epsilon:         DefaultEpsilon,
		Discount:        1,
		Backup:          NaturalParent,
		Multiplayer:     Independent,
		ParanoidPlayer:  RootPlayer,
		MASTMode:        MASTRolloutOnly,
		MASTTemperature: DefaultTemperature,
		Recommendation:  RobustChild,
		MaxReportDepth:  DefaultMaxReportDepth,
	}
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read search config %q", path)
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse search config")
	}
	return cfg, cfg.Validate()
}

func (c Config) widening() bool {
	return c.WideningConstant >= 1 && c.WideningExponent > 0
}

func (c Config) usesMAST() bool {
	return c.MAST || c.Rollout == MASTRollout
}

func invalid(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidConfig, format, args...)
}

// Validate rejects budgets, ranges and policy combinations that cannot be run.
func (c Config) Validate() error {
	switch {
	case c.Iterations <= 0 && c.Duration <= 0 && c.ForwardModelCalls <= 0:
		return invalid("must specify search iterations, duration or forward model calls")
	case c.Exploration < 0 || math.IsNaN(c.Exploration):
		return invalid("exploration constant %v must be non-negative", c.Exploration)
	case math.IsNaN(c.FPU):
		return invalid("first play urgency cannot be NaN")
	case c.MaxTreeDepth < 0:
		return invalid("max tree depth %d must be non-negative", c.MaxTreeDepth)
	case c.RolloutLength < 0:
		return invalid("rollout length %d must be non-negative", c.RolloutLength)
	case c.InitVisits < 0:
		return invalid("init visits %d must be non-negative", c.InitVisits)
	case c.Discount <= 0 || c.Discount > 1:
		return invalid("discount %v must be in (0, 1]", c.Discount)
	case c.Epsilon < 0 || c.Epsilon > 1:
		return invalid("epsilon %v must be in [0, 1]", c.Epsilon)
	case c.WideningConstant >= 1 && c.WideningExponent <= 0:
		return invalid("widening exponent %v must be positive when widening constant is %v", c.WideningExponent, c.WideningConstant)
	case c.MASTWeight < 0 || c.MASTWeight > 1:
		return invalid("MAST weight %v must be in [0, 1]", c.MASTWeight)
	case c.MASTMomentum < 0 || c.MASTMomentum >= 1:
		return invalid("MAST momentum %v must be in [0, 1)", c.MASTMomentum)
	case c.usesMAST() && c.MASTTemperature <= 0:
		return invalid("MAST temperature %v must be positive", c.MASTTemperature)
	}

	switch c.Rollout {
	case RandomRollout, EpsilonGreedyRollout, MASTRollout:
	default:
		return invalid("unknown rollout policy %q", c.Rollout)
	}

	switch c.MASTMode {
	case MASTRolloutOnly, MASTTreeOnly, MASTBoth:
	default:
		return invalid("unknown MAST mode %q", c.MASTMode)
	}

	switch c.Backup {
	case NaturalParent:
	case Transposition, Both:
		if !c.Graph {
			return invalid("%s backup requires graph search", c.Backup)
		}
	default:
		return invalid("unknown backup policy %q", c.Backup)
	}

	switch c.Multiplayer {
	case Paranoid:
		if c.ParanoidPlayer < RootPlayer {
			return invalid("paranoid player %d is not a player", c.ParanoidPlayer)
		}
	case Independent:
		if c.ParanoidPlayer != RootPlayer {
			return invalid("paranoid player %d set with independent multi-player policy", c.ParanoidPlayer)
		}
	default:
		return invalid("unknown multi-player policy %q", c.Multiplayer)
	}

	switch c.Recommendation {
	case RobustChild, SimpleMean:
	case Subgoal:
		if !c.Graph {
			return invalid("subgoal recommendation requires graph search")
		}
	default:
		return invalid("unknown recommendation policy %q", c.Recommendation)
	}

	return nil
}
