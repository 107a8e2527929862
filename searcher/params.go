package searcher

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Params are "key=value" pairs given on a command line, e.g.
// "iterations=500,graph,backup=both". A key without a value is a true bool.
type Params map[string]string

func NewParams(config string) Params {
	params := make(Params)
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		subParts := strings.SplitN(part, "=", 2) // Values may contain '='
		if len(subParts) == 1 {
			params[subParts[0]] = ""
		} else {
			params[subParts[0]] = subParts[1]
		}
	}
	return params
}

// PopParamOr parses and removes a parameter, or returns defaultValue if absent.
func PopParamOr[T paramValue](params Params, key string, defaultValue T) (T, error) {
	value, exists := params[key]
	if !exists {
		return defaultValue, nil
	}
	delete(params, key)

	var parsed any
	var err error
	switch any(defaultValue).(type) {
	case string:
		parsed = value
	case bool:
		switch strings.ToLower(value) {
		case "", "true", "1":
			parsed = true
		case "false", "0":
			parsed = false
		default:
			err = errors.Errorf("not a bool")
		}
	case int:
		parsed, err = strconv.Atoi(value)
	case int64:
		parsed, err = strconv.ParseInt(value, 10, 64)
	case uint64:
		parsed, err = strconv.ParseUint(value, 10, 64)
	case float64:
		parsed, err = strconv.ParseFloat(value, 64)
	case time.Duration:
		parsed, err = time.ParseDuration(value)
	}
	if err != nil {
		return defaultValue, errors.Wrapf(err, "failed to parse configuration %s=%q", key, value)
	}
	return parsed.(T), nil
}

type paramValue interface {
	bool | int | int64 | uint64 | float64 | string | time.Duration
}

// pop overwrites *field with the parameter under key, keeping the first error.
func pop[T paramValue](p Params, key string, field *T, err *error) {
	if *err != nil {
		return
	}
	*field, *err = PopParamOr(p, key, *field)
}

func popEnum[T ~string](p Params, key string, field *T, err *error) {
	value := string(*field)
	pop(p, key, &value, err)
	*field = T(value)
}

// Apply overrides cfg with the parameters it recognizes. Unknown keys are an
// error so typos do not silently fall back to defaults.
func (p Params) Apply(cfg Config) (Config, error) {
	var err error
	pop(p, "iterations", &cfg.Iterations, &err)
	pop(p, "duration", &cfg.Duration, &err)
	pop(p, "fm_calls", &cfg.ForwardModelCalls, &err)
	pop(p, "k", &cfg.Exploration, &err)
	pop(p, "fpu", &cfg.FPU, &err)
	pop(p, "max_tree_depth", &cfg.MaxTreeDepth, &err)
	pop(p, "pw_c", &cfg.WideningConstant, &err)
	pop(p, "pw_alpha", &cfg.WideningExponent, &err)
	pop(p, "init_visits", &cfg.InitVisits, &err)
	popEnum(p, "rollout", &cfg.Rollout, &err)
	pop(p, "rollout_length", &cfg.RolloutLength, &err)
	pop(p, "epsilon", &cfg.Epsilon, &err)
	pop(p, "gamma", &cfg.Discount, &err)
	popEnum(p, "backup", &cfg.Backup, &err)
	popEnum(p, "multiplayer", &cfg.Multiplayer, &err)
	pop(p, "paranoid_player", &cfg.ParanoidPlayer, &err)
	pop(p, "mast", &cfg.MAST, &err)
	popEnum(p, "mast_mode", &cfg.MASTMode, &err)
	pop(p, "mast_beta", &cfg.MASTWeight, &err)
	pop(p, "mast_temperature", &cfg.MASTTemperature, &err)
	pop(p, "mast_gamma", &cfg.MASTMomentum, &err)
	pop(p, "mast_default", &cfg.MASTDefault, &err)
	pop(p, "keep_mast", &cfg.KeepMAST, &err)
	pop(p, "graph", &cfg.Graph, &err)
	popEnum(p, "recommendation", &cfg.Recommendation, &err)
	pop(p, "seed", &cfg.Seed, &err)
	pop(p, "max_report_depth", &cfg.MaxReportDepth, &err)
	if err != nil {
		return cfg, err
	}

	if len(p) > 0 {
		keys := make([]string, 0, len(p))
		for key := range p {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return cfg, invalid("unknown parameters %v", keys)
	}
	return cfg, cfg.Validate()
}

// ParseConfig builds a validated Config from defaults and a parameter string.
func ParseConfig(config string) (Config, error) {
	return NewParams(config).Apply(DefaultConfig())
}
