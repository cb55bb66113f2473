package vem

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wangkuiyi/vemlda/core/fileio"
)

const (
	AlphaSymmetric = "symmetric"
	AlphaVector    = "vector"

	MethodNewton     = "newton"
	MethodFixedPoint = "fixed-point"
)

// Config holds the settings of an estimation or inference run.  A
// Config is read-only once a run starts; the variational budget that
// the EM loop doubles lives in the run state, not here.
type Config struct {
	VarMaxIter   int     `json:"var_max_iter" yaml:"var_max_iter"` // -1 means unbounded
	VarConverged float64 `json:"var_converged" yaml:"var_converged"`
	EMMaxIter    int     `json:"em_max_iter" yaml:"em_max_iter"`
	EMConverged  float64 `json:"em_converged" yaml:"em_converged"`

	EstimateAlpha     bool    `json:"estimate_alpha" yaml:"estimate_alpha"`
	AlphaMode         string  `json:"alpha_mode" yaml:"alpha_mode"`
	AlphaMethod       string  `json:"alpha_method" yaml:"alpha_method"`
	NewtonThresh      float64 `json:"newton_thresh" yaml:"newton_thresh"`
	MaxAlphaIter      int     `json:"max_alpha_iter" yaml:"max_alpha_iter"`
	MaxRecursionLimit int     `json:"max_recursion_limit" yaml:"max_recursion_limit"`

	Lag     int   `json:"lag" yaml:"lag"`
	Seed    int64 `json:"seed" yaml:"seed"`
	Workers int   `json:"workers" yaml:"workers"`

	// In vector mode, training restarts from a fresh random model if
	// EM converges before iteration RestartBefore.  Zero disables it.
	RestartBefore int `json:"restart_before" yaml:"restart_before"`
	MaxRestarts   int `json:"max_restarts" yaml:"max_restarts"`
}

// DefaultConfig returns the usual inference settings plus
// defaults for the optional keys.
func DefaultConfig() *Config {
	return &Config{
		VarMaxIter:        20,
		VarConverged:      1e-6,
		EMMaxIter:         100,
		EMConverged:       1e-4,
		EstimateAlpha:     true,
		AlphaMode:         AlphaSymmetric,
		AlphaMethod:       MethodNewton,
		NewtonThresh:      1e-5,
		MaxAlphaIter:      1000,
		MaxRecursionLimit: 5,
		Lag:               10,
		Seed:              4357,
		Workers:           1,
		RestartBefore:     5,
		MaxRestarts:       3,
	}
}

var requiredSettings = []string{
	"var max iter", "var convergence", "em max iter", "em convergence", "alpha"}

// ParseSettings reads settings in the key-value format:
//
//	var max iter 20
//	var convergence 1e-6
//	em max iter 100
//	em convergence 1e-4
//	alpha estimate
//
// A key is every field of a line but the last one.  Keys are case
// insensitive and an underscore reads as a space, so VAR_MAX_ITER=20
// is also accepted.  Lines starting with # are comments.
func ParseSettings(r io.Reader) (*Config, error) {
	c := DefaultConfig()
	seen := make(map[string]bool)
	line := 0

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if len(text) == 0 || strings.HasPrefix(text, "#") {
			continue
		}
		text = strings.Replace(text, "=", " ", 1)
		fs := strings.Fields(strings.ToLower(strings.ReplaceAll(text, "_", " ")))
		if len(fs) < 2 {
			return nil, fmt.Errorf("%w: line %d: no value in %q", ErrSettings, line, text)
		}
		key := canonicalKey(strings.Join(fs[:len(fs)-1], " "))
		if e := c.set(key, fs[len(fs)-1]); e != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSettings, line, e)
		}
		seen[key] = true
	}
	if e := scanner.Err(); e != nil {
		return nil, fmt.Errorf("reading settings: %w", e)
	}

	for _, k := range requiredSettings {
		if !seen[k] {
			return nil, fmt.Errorf("%w: missing %q", ErrSettings, k)
		}
	}
	if e := c.Validate(); e != nil {
		return nil, e
	}
	return c, nil
}

func canonicalKey(k string) string {
	switch k {
	case "var converged":
		return "var convergence"
	case "em converged":
		return "em convergence"
	}
	return k
}

func (c *Config) set(key, value string) error {
	var e error
	switch key {
	case "var max iter":
		c.VarMaxIter, e = strconv.Atoi(value)
	case "var convergence":
		c.VarConverged, e = strconv.ParseFloat(value, 64)
	case "em max iter":
		c.EMMaxIter, e = strconv.Atoi(value)
	case "em convergence":
		c.EMConverged, e = strconv.ParseFloat(value, 64)
	case "alpha":
		switch value {
		case "fixed":
			c.EstimateAlpha = false
		case "estimate":
			c.EstimateAlpha = true
		default:
			return fmt.Errorf("alpha must be fixed or estimate, got %q", value)
		}
	case "alpha mode":
		c.AlphaMode = value
	case "alpha method":
		c.AlphaMethod = value
	case "newton thresh":
		c.NewtonThresh, e = strconv.ParseFloat(value, 64)
	case "max alpha iter":
		c.MaxAlphaIter, e = strconv.Atoi(value)
	case "max recursion limit":
		c.MaxRecursionLimit, e = strconv.Atoi(value)
	case "lag":
		c.Lag, e = strconv.Atoi(value)
	case "seed":
		c.Seed, e = strconv.ParseInt(value, 10, 64)
	case "workers":
		c.Workers, e = strconv.Atoi(value)
	case "restart before":
		c.RestartBefore, e = strconv.Atoi(value)
	case "max restarts":
		c.MaxRestarts, e = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	if e != nil {
		return fmt.Errorf("bad value %q of %q", value, key)
	}
	return nil
}

// LoadSettings loads a settings file, YAML if its extension is .yaml
// or .yml and the key-value format otherwise, and then applies the
// LDA_WORKERS, LDA_SEED, LDA_EM_MAX_ITER and LDA_VAR_MAX_ITER
// environment variables.
func LoadSettings(path string) (*Config, error) {
	f, e := fileio.Open(path)
	if e != nil {
		return nil, e
	}
	defer f.Close()

	var c *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c = DefaultConfig()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if e := dec.Decode(c); e != nil && e != io.EOF {
			return nil, fmt.Errorf("%w: %s: %v", ErrSettings, path, e)
		}
	default:
		if c, e = ParseSettings(f); e != nil {
			return nil, fmt.Errorf("%s: %w", path, e)
		}
	}

	if e := c.applyEnv(os.LookupEnv); e != nil {
		return nil, e
	}
	if e := c.Validate(); e != nil {
		return nil, fmt.Errorf("%s: %w", path, e)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for env, key := range map[string]string{
		"LDA_WORKERS":      "workers",
		"LDA_SEED":         "seed",
		"LDA_EM_MAX_ITER":  "em max iter",
		"LDA_VAR_MAX_ITER": "var max iter",
	} {
		if v, ok := lookup(env); ok {
			if e := c.set(key, strings.TrimSpace(v)); e != nil {
				return fmt.Errorf("%w: %s: %v", ErrSettings, env, e)
			}
		}
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.VarMaxIter == 0 || c.VarMaxIter < -1:
		return fmt.Errorf("%w: var max iter must be positive or -1, got %d", ErrSettings, c.VarMaxIter)
	case c.VarConverged <= 0:
		return fmt.Errorf("%w: var convergence must be positive", ErrSettings)
	case c.EMMaxIter <= 0:
		return fmt.Errorf("%w: em max iter must be positive", ErrSettings)
	case c.EMConverged <= 0:
		return fmt.Errorf("%w: em convergence must be positive", ErrSettings)
	case c.AlphaMode != AlphaSymmetric && c.AlphaMode != AlphaVector:
		return fmt.Errorf("%w: unknown alpha mode %q", ErrSettings, c.AlphaMode)
	case c.AlphaMethod != MethodNewton && c.AlphaMethod != MethodFixedPoint:
		return fmt.Errorf("%w: unknown alpha method %q", ErrSettings, c.AlphaMethod)
	case c.NewtonThresh <= 0 || c.MaxAlphaIter <= 0 || c.MaxRecursionLimit < 0:
		return fmt.Errorf("%w: bad alpha optimizer bounds", ErrSettings)
	case c.Lag <= 0:
		return fmt.Errorf("%w: lag must be positive", ErrSettings)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrSettings)
	case c.RestartBefore < 0 || c.MaxRestarts < 0:
		return fmt.Errorf("%w: restart settings must not be negative", ErrSettings)
	}
	return nil
}

func (c *Config) String() string {
	b, e := json.MarshalIndent(c, "", "  ")
	if e != nil {
		return fmt.Sprintf("%+v", *c)
	}
	return string(b)
}
