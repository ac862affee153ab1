package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Report is the pipeline output handed to a formatter.
type Report struct {
	RunID     string        `json:"runId" yaml:"runId"`
	Strategy  string        `json:"strategy" yaml:"strategy"`
	Possible  []Recipe      `json:"possible,omitempty" yaml:"possible,omitempty"`
	Suggested []Recipe      `json:"suggested,omitempty" yaml:"suggested,omitempty"`
	Elapsed   time.Duration `json:"-" yaml:"-"`
}

// Planner wires the pipeline stages together for one catalog and config.
type Planner struct {
	Catalog *Catalog
	Config  Config
	// Solver defaults to a BranchAndBound configured from Config.Solver.
	Solver Solver
	// Progress receives simulation progress; see EnumerateOptions.
	Progress func(n int)
	Logger   *slog.Logger

	stages []Stage
	quota  map[Group]int
}

func NewPlanner(c *Catalog, cfg Config) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stages, err := ParseStages(cfg.Processes)
	if err != nil {
		return nil, err
	}
	groups := make([]string, len(c.Groups))
	for i, g := range c.Groups {
		groups[i] = string(g.Key)
	}
	quota := make(map[Group]int, len(cfg.Quota))
	for g, q := range cfg.Quota {
		if !slices.Contains(groups, g) {
			return nil, unknownKeyError(ErrInvalidConfig, g, groups)
		}
		quota[Group(g)] = q
	}
	return &Planner{Catalog: c, Config: cfg, stages: stages, quota: quota}, nil
}

func (p *Planner) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Planner) solver() Solver {
	if p.Solver != nil {
		return p.Solver
	}
	return &BranchAndBound{MaxVariables: p.Config.Solver.MaxVariables, Logger: p.logger()}
}

func (p *Planner) enumerateOptions() EnumerateOptions {
	return EnumerateOptions{MaxR: p.Config.ArcanePower, Workers: p.Config.Workers, Progress: p.Progress}
}

func (p *Planner) selector(log *slog.Logger) *LocalSelector {
	return &LocalSelector{
		Catalog:     p.Catalog,
		Stages:      p.stages,
		Enumerate:   p.enumerateOptions(),
		PerCategory: p.Config.PerCategory,
		Logger:      log,
	}
}

// Run executes the whole pipeline for inv. When the optimizer finds no
// feasible selection the returned report still carries the possible recipes
// alongside the *InfeasibleError.
func (p *Planner) Run(ctx context.Context, inv Inventory) (*Report, error) {
	start := time.Now()
	if err := ValidateInventory(p.Catalog, inv); err != nil {
		return nil, err
	}

	report := &Report{RunID: uuid.NewString(), Strategy: p.Config.Strategy}
	log := p.logger().With("run", report.RunID)
	log.Info("pipeline started",
		"ingredients", inv.Keys(p.Catalog),
		"processes", p.stages,
		"arcane_power", p.Config.ArcanePower,
		"strategy", p.Config.Strategy)

	var candidates []Recipe
	var err error
	switch p.Config.Strategy {
	case StrategyExhaustive:
		candidates, err = p.allRecipes(ctx, inv, log)
	default:
		candidates, err = p.selector(log).BestForAll(ctx, inv)
	}
	if err != nil {
		return nil, err
	}
	report.Possible = SortForReport(possibleWith(candidates, inv))
	log.Info("candidates ready", "possible", len(report.Possible))

	opt := &GlobalOptimizer{
		Catalog: p.Catalog,
		Solver:  p.solver(),
		Quota:   p.quota,
		Timeout: p.Config.Solver.Timeout,
		Logger:  log,
	}
	suggested, err := opt.Optimize(ctx, report.Possible, inv)
	report.Elapsed = time.Since(start)
	if err != nil {
		return report, err
	}
	report.Suggested = SortForReport(suggested)
	log.Info("pipeline finished", "suggested", len(report.Suggested), "elapsed", report.Elapsed)
	return report, nil
}

// BestFor runs the local selection for a single category key.
func (p *Planner) BestFor(ctx context.Context, categoryKey string, inv Inventory) ([]Recipe, error) {
	category, ok := p.Catalog.Category(categoryKey)
	if !ok {
		return nil, unknownKeyError(ErrUnknownCategory, categoryKey, p.Catalog.CategoryKeys())
	}
	if inv != nil {
		if err := ValidateInventory(p.Catalog, inv); err != nil {
			return nil, err
		}
	}
	return p.selector(p.logger()).BestForCategory(ctx, category, inv)
}

// allRecipes enumerates every recipe the stocked ingredients allow, less the
// ones PruneDominated shows can never improve a selection.
func (p *Planner) allRecipes(ctx context.Context, inv Inventory, log *slog.Logger) ([]Recipe, error) {
	var raw []Item
	for _, it := range p.Catalog.Items {
		if inv[it.Key] > 0 {
			raw = append(raw, it)
		}
	}
	pool := ExpandAll(p.Catalog, raw, p.stages)
	recipes, err := EnumerateAndSimulate(ctx, p.Catalog, pool, p.enumerateOptions())
	if err != nil {
		return nil, fmt.Errorf("enumerate: %w", err)
	}
	kept := PruneDominated(recipes)
	log.Info("enumerated", "ingredients", len(pool), "recipes", len(recipes), "undominated", len(kept))
	return kept, nil
}

// possibleWith drops recipes needing more of an ingredient than inv holds.
func possibleWith(recipes []Recipe, inv Inventory) []Recipe {
	var out []Recipe
	for _, r := range recipes {
		ok := true
		for key, n := range r.Usage() {
			if inv[key] < n {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	return out
}

// SortForReport orders recipes by group, appeal, strength and category name,
// all descending. The sort is stable so equal keys keep their input order.
func SortForReport(recipes []Recipe) []Recipe {
	out := slices.Clone(recipes)
	slices.SortStableFunc(out, func(a, b Recipe) int {
		if c := cmp.Compare(b.Category.Group, a.Category.Group); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Appeal, a.Appeal); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Strength, a.Strength); c != 0 {
			return c
		}
		return cmp.Compare(b.Category.Name, a.Category.Name)
	})
	return out
}
