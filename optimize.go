package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// DefaultQuota is the per-group cap used when a group has no explicit quota.
const DefaultQuota = 5

// GlobalOptimizer chooses which candidate recipes to brew: at most one per
// category, within the inventory and the per-group quotas. It maximizes the
// number of categories first and total strength second, in two sequential
// oracle calls.
type GlobalOptimizer struct {
	Catalog *Catalog
	Solver  Solver
	// Quota overrides DefaultQuota per group.
	Quota map[Group]int
	// Timeout bounds each oracle call; a timeout counts as infeasible.
	Timeout time.Duration
	Logger  *slog.Logger
}

func (o *GlobalOptimizer) quota(g Group) int {
	if q, ok := o.Quota[g]; ok {
		return q
	}
	return DefaultQuota
}

func (o *GlobalOptimizer) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// BuildProblem declares one binary variable per candidate and the shared
// constraints. The objective is left empty.
func (o *GlobalOptimizer) BuildProblem(candidates []Recipe, inv Inventory) *Problem {
	p := &Problem{Name: "recipe_selection", Variables: make([]string, len(candidates))}

	byCategory := make(map[string][]int)
	byGroup := make(map[Group][]int)
	usage := make(map[string]map[int]float64)
	for i, r := range candidates {
		p.Variables[i] = fmt.Sprintf("recipe_%s_%d", r.Category.Key, i)
		byCategory[r.Category.Key] = append(byCategory[r.Category.Key], i)
		byGroup[r.Category.Group] = append(byGroup[r.Category.Group], i)
		for key, n := range r.Usage() {
			if usage[key] == nil {
				usage[key] = make(map[int]float64)
			}
			usage[key][i] = float64(n)
		}
	}

	for _, cat := range o.Catalog.Categories {
		if idxs := byCategory[cat.Key]; len(idxs) > 0 {
			p.Constraints = append(p.Constraints, Constraint{
				Label:        "at_most_one_" + cat.Key,
				Coefficients: unitCoefficients(idxs),
				Relation:     LessEqual,
				Bound:        1,
			})
		}
	}

	// Ingredients missing from the inventory are bounded by zero.
	for _, it := range o.Catalog.Items {
		if coeffs, ok := usage[it.Key]; ok {
			p.Constraints = append(p.Constraints, Constraint{
				Label:        "available_" + it.Key,
				Coefficients: coeffs,
				Relation:     LessEqual,
				Bound:        float64(inv[it.Key]),
			})
		}
	}

	for _, g := range o.Catalog.Groups {
		if idxs := byGroup[g.Key]; len(idxs) > 0 {
			p.Constraints = append(p.Constraints, Constraint{
				Label:        "quota_" + string(g.Key),
				Coefficients: unitCoefficients(idxs),
				Relation:     LessEqual,
				Bound:        float64(o.quota(g.Key)),
			})
		}
	}
	return p
}

func unitCoefficients(idxs []int) map[int]float64 {
	m := make(map[int]float64, len(idxs))
	for _, i := range idxs {
		m[i] = 1
	}
	return m
}

// Optimize runs both phases and returns the selected candidates in input
// order. Infeasibility or a timeout in either phase yields an
// *InfeasibleError and no selection.
func (o *GlobalOptimizer) Optimize(ctx context.Context, candidates []Recipe, inv Inventory) ([]Recipe, error) {
	base := o.BuildProblem(candidates, inv)
	all := make([]int, len(candidates))
	for i := range all {
		all[i] = i
	}

	// Phase 1: as many categories as possible. With at most one candidate per
	// category, the selection count is the category count.
	p1 := *base
	p1.Name = "max_categories"
	p1.Objective = Objective{Sense: Maximize, Coefficients: unitCoefficients(all)}
	sol1, err := o.solve(ctx, &p1)
	if err != nil {
		return nil, err
	}
	count := math.Round(p1.Evaluate(sol1.Assignment))
	o.logger().Info("phase 1 solved", "candidates", len(candidates), "categories", int(count))

	// Phase 2: strongest selection that keeps the phase 1 count.
	p2 := *base
	p2.Name = "max_strength"
	p2.Constraints = append(append([]Constraint(nil), base.Constraints...), Constraint{
		Label:        "keep_max_categories",
		Coefficients: unitCoefficients(all),
		Relation:     Equal,
		Bound:        count,
	})
	strength := make(map[int]float64, len(candidates))
	for i, r := range candidates {
		strength[i] = r.Strength.Float()
	}
	p2.Objective = Objective{Sense: Maximize, Coefficients: strength}
	sol2, err := o.solve(ctx, &p2)
	if err != nil {
		return nil, err
	}
	o.logger().Info("phase 2 solved", "strength", p2.Evaluate(sol2.Assignment))

	if label := p2.Violated(sol2.Assignment); label != "" {
		return nil, fmt.Errorf("solver returned an assignment violating %s", label)
	}

	var selected []Recipe
	for i, on := range sol2.Assignment {
		if on {
			selected = append(selected, candidates[i])
		}
	}
	return selected, nil
}

func (o *GlobalOptimizer) solve(ctx context.Context, p *Problem) (Solution, error) {
	callCtx := ctx
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	sol, err := o.Solver.Solve(callCtx, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return Solution{}, &InfeasibleError{Phase: p.Name, Status: StatusInfeasible, Cause: err}
		}
		return Solution{}, fmt.Errorf("phase %s: %w", p.Name, err)
	}
	if sol.Status != StatusOptimal {
		return Solution{}, &InfeasibleError{Phase: p.Name, Status: sol.Status}
	}
	if len(sol.Assignment) != len(p.Variables) {
		return Solution{}, fmt.Errorf("phase %s: solver returned %d values for %d variables",
			p.Name, len(sol.Assignment), len(p.Variables))
	}
	return sol, nil
}
