package searcher

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Iterations = 10
	require.NoError(t, valid.Validate())

	invalidConfigs := map[string]func(c *Config){
		"no budget":                        func(c *Config) { c.Iterations = 0 },
		"negative exploration":             func(c *Config) { c.Exploration = -1 },
		"NaN first play urgency":           func(c *Config) { c.FPU = math.NaN() },
		"negative rollout length":          func(c *Config) { c.RolloutLength = -1 },
		"zero discount":                    func(c *Config) { c.Discount = 0 },
		"discount above one":               func(c *Config) { c.Discount = 1.5 },
		"epsilon above one":                func(c *Config) { c.Epsilon = 2 },
		"widening without exponent":        func(c *Config) { c.WideningConstant = 2 },
		"MAST weight above one":            func(c *Config) { c.MASTWeight = 1.1 },
		"MAST momentum of one":             func(c *Config) { c.MASTMomentum = 1 },
		"MAST without temperature":         func(c *Config) { c.MAST, c.MASTTemperature = true, 0 },
		"unknown rollout":                  func(c *Config) { c.Rollout = "greedy" },
		"unknown MAST mode":                func(c *Config) { c.MASTMode = "all" },
		"unknown backup":                   func(c *Config) { c.Backup = "upward" },
		"transposition backup in a tree":   func(c *Config) { c.Backup = Transposition },
		"both backups in a tree":           func(c *Config) { c.Backup = Both },
		"independent with paranoid player": func(c *Config) { c.ParanoidPlayer = 1 },
		"unknown multiplayer policy":       func(c *Config) { c.Multiplayer = "coalition" },
		"subgoal in a tree":                func(c *Config) { c.Recommendation = Subgoal },
		"unknown recommendation":           func(c *Config) { c.Recommendation = "max" },
	}
	for name, mutate := range invalidConfigs {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidConfig), "Should wrap ErrInvalidConfig, got %v", err)
		})
	}

	t.Run("graph enables transposition backup and subgoal", func(t *testing.T) {
		c := valid
		c.Graph = true
		c.Backup = Both
		c.Recommendation = Subgoal
		require.NoError(t, c.Validate())
	})

	t.Run("paranoid player", func(t *testing.T) {
		c := valid
		c.Multiplayer = Paranoid
		c.ParanoidPlayer = 1
		require.NoError(t, c.Validate())
	})

	t.Run("widening needs a constant of at least one", func(t *testing.T) {
		c := valid
		c.WideningConstant = 0.5
		require.NoError(t, c.Validate())
		require.False(t, c.widening())

		c.WideningConstant, c.WideningExponent = 1, 0.5
		require.True(t, c.widening())
	})
}

func TestParseYAML(t *testing.T) {
	t.Run("overriding defaults", func(t *testing.T) {
		cfg, err := ParseYAML([]byte("iterations: 50\ngraph: true\nbackup: both\nduration: 2s\n"))
		require.NoError(t, err)
		require.Equal(t, 50, cfg.Iterations)
		require.Equal(t, 2*time.Second, cfg.Duration)
		require.True(t, cfg.Graph)
		require.Equal(t, Both, cfg.Backup)
		require.Equal(t, DefaultRolloutLength, cfg.RolloutLength, "Unset fields should keep defaults")
	})

	t.Run("rejecting invalid combinations", func(t *testing.T) {
		_, err := ParseYAML([]byte("iterations: 50\nbackup: transposition\n"))
		require.True(t, errors.Is(err, ErrInvalidConfig))
	})

	t.Run("rejecting malformed YAML", func(t *testing.T) {
		_, err := ParseYAML([]byte("iterations: [1"))
		require.Error(t, err)
	})

	t.Run("loading from a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "search.yaml")
		require.NoError(t, os.WriteFile(path, []byte("iterations: 7\nmast: true\n"), 0644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		require.Equal(t, 7, cfg.Iterations)
		require.True(t, cfg.MAST)

		_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

func TestParams(t *testing.T) {
	t.Run("splitting key value pairs", func(t *testing.T) {
		params := NewParams("iterations=10, graph,backup=both,")
		require.Equal(t, Params{"iterations": "10", "graph": "", "backup": "both"}, params)
	})

	t.Run("popping typed values", func(t *testing.T) {
		params := NewParams("iterations=10,graph,k=0.5,duration=20ms")

		iterations, err := PopParamOr(params, "iterations", 1)
		require.NoError(t, err)
		require.Equal(t, 10, iterations)

		graph, err := PopParamOr(params, "graph", false)
		require.NoError(t, err)
		require.True(t, graph, "A bare key should be true")

		k, err := PopParamOr(params, "k", 1.0)
		require.NoError(t, err)
		require.Equal(t, 0.5, k)

		duration, err := PopParamOr(params, "duration", time.Second)
		require.NoError(t, err)
		require.Equal(t, 20*time.Millisecond, duration)

		missing, err := PopParamOr(params, "seed", uint64(3))
		require.NoError(t, err)
		require.Equal(t, uint64(3), missing)
		require.Empty(t, params, "Popped keys should be removed")
	})

	t.Run("reporting unparsable values", func(t *testing.T) {
		_, err := PopParamOr(NewParams("iterations=many"), "iterations", 1)
		require.Error(t, err)
		_, err = PopParamOr(NewParams("graph=maybe"), "graph", false)
		require.Error(t, err)
	})

	t.Run("building a config", func(t *testing.T) {
		cfg, err := ParseConfig("iterations=100,graph,backup=both,multiplayer=paranoid,paranoid_player=1,mast,mast_beta=0.25,recommendation=subgoal,seed=9")
		require.NoError(t, err)
		require.Equal(t, 100, cfg.Iterations)
		require.True(t, cfg.Graph)
		require.Equal(t, Both, cfg.Backup)
		require.Equal(t, Paranoid, cfg.Multiplayer)
		require.Equal(t, 1, cfg.ParanoidPlayer)
		require.True(t, cfg.MAST)
		require.Equal(t, 0.25, cfg.MASTWeight)
		require.Equal(t, Subgoal, cfg.Recommendation)
		require.Equal(t, uint64(9), cfg.Seed)
	})

	t.Run("rejecting unknown keys", func(t *testing.T) {
		_, err := ParseConfig("iterations=100,iteration=5")
		require.True(t, errors.Is(err, ErrInvalidConfig))
		require.Contains(t, err.Error(), "iteration")
	})

	t.Run("validating the result", func(t *testing.T) {
		_, err := ParseConfig("rollout_length=5")
		require.True(t, errors.Is(err, ErrInvalidConfig), "A config without budget should be rejected")
	})
}
