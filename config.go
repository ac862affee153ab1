package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StrategyLocal      = "local"
	StrategyExhaustive = "exhaustive"

	OutputPossible  = "possible"
	OutputSuggested = "suggested"

	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config is the pipeline configuration, normally read from potions.yml.
type Config struct {
	// Catalog is a catalog JSON path; empty uses the embedded catalog.
	Catalog string `mapstructure:"catalog"`
	// Ingredients is the inventory: raw ingredient key to quantity on hand.
	Ingredients map[string]int `mapstructure:"ingredients"`
	// Processes lists the enabled transformation stages.
	Processes []string `mapstructure:"processes"`
	// ArcanePower is the arity bound: the most ingredients one recipe may use.
	ArcanePower int `mapstructure:"arcane_power"`
	// PerCategory is how many locally-best recipes each category contributes.
	PerCategory int `mapstructure:"per_category"`
	// Quota overrides the per-group selection cap.
	Quota map[string]int `mapstructure:"quota"`
	// Strategy is "local" (per-category pre-selection feeds the optimizer)
	// or "exhaustive" (every candidate feeds the optimizer).
	Strategy string `mapstructure:"strategy"`
	// Outputs lists the report sections to print.
	Outputs []string `mapstructure:"outputs"`
	// Workers is the simulation goroutine count; 0 means GOMAXPROCS.
	Workers int    `mapstructure:"workers"`
	Format  string `mapstructure:"format"`

	Solver  SolverConfig  `mapstructure:"solver"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type SolverConfig struct {
	// Timeout bounds each optimizer phase; 0 disables it.
	Timeout time.Duration `mapstructure:"timeout"`
	// MaxVariables refuses larger problems; 0 disables the cap.
	MaxVariables int `mapstructure:"max_variables"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the settings used when potions.yml omits a key.
func DefaultConfig() Config {
	return Config{
		Processes:   []string{"split", "purify", "convert"},
		ArcanePower: 3,
		PerCategory: 5,
		Strategy:    StrategyLocal,
		Outputs:     []string{OutputPossible, OutputSuggested},
		Format:      FormatText,
		Solver: SolverConfig{
			Timeout:      time.Minute,
			MaxVariables: 5000,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// EnvPrefix namespaces environment overrides: solver.timeout is read from
// POTIONFORGE_SOLVER_TIMEOUT.
const EnvPrefix = "POTIONFORGE"

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults registers DefaultConfig with v so file and env values layer on
// top of it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("catalog", d.Catalog)
	v.SetDefault("processes", d.Processes)
	v.SetDefault("arcane_power", d.ArcanePower)
	v.SetDefault("per_category", d.PerCategory)
	v.SetDefault("strategy", d.Strategy)
	v.SetDefault("outputs", d.Outputs)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("format", d.Format)
	v.SetDefault("solver.timeout", d.Solver.Timeout)
	v.SetDefault("solver.max_variables", d.Solver.MaxVariables)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// LoadConfig decodes v into a Config and validates it.
func LoadConfig(v *viper.Viper) (Config, error) {
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks everything that does not need the catalog.
func (c Config) Validate() error {
	if c.ArcanePower < 2 {
		return fmt.Errorf("%w: arcane_power must be at least 2, got %d", ErrInvalidConfig, c.ArcanePower)
	}
	if c.PerCategory < 0 {
		return fmt.Errorf("%w: per_category must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if _, err := ParseStages(c.Processes); err != nil {
		return err
	}
	if c.Strategy != StrategyLocal && c.Strategy != StrategyExhaustive {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
	}
	for _, o := range c.Outputs {
		if o != OutputPossible && o != OutputSuggested {
			return fmt.Errorf("%w: unknown output %q", ErrInvalidConfig, o)
		}
	}
	if !slices.Contains([]string{FormatText, FormatYAML, FormatJSON}, c.Format) {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidConfig, c.Format)
	}
	for g, q := range c.Quota {
		if q < 0 {
			return fmt.Errorf("%w: negative quota %d for %q", ErrInvalidConfig, q, g)
		}
	}
	if c.Solver.Timeout < 0 || c.Solver.MaxVariables < 0 {
		return fmt.Errorf("%w: solver limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Wants reports whether output section s was requested.
func (c Config) Wants(s string) bool { return slices.Contains(c.Outputs, s) }
