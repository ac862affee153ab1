package main

import (
	"context"
	"fmt"
	"math"
)

type Relation int

const (
	LessEqual Relation = iota
	Equal
)

func (r Relation) String() string {
	if r == Equal {
		return "="
	}
	return "<="
}

type Sense int

const (
	Maximize Sense = iota
	Minimize
)

type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Constraint is a linear row over binary variables, keyed by variable index.
type Constraint struct {
	Label        string
	Coefficients map[int]float64
	Relation     Relation
	Bound        float64
}

type Objective struct {
	Sense        Sense
	Coefficients map[int]float64
}

// Problem is a binary linear program: every variable is 0 or 1.
type Problem struct {
	Name        string
	Variables   []string
	Constraints []Constraint
	Objective   Objective
}

// Solution is an oracle's answer. Assignment and Value are only meaningful
// when Status is StatusOptimal.
type Solution struct {
	Status     Status
	Assignment []bool
	Value      float64
}

// Solver is the optimization oracle. Implementations must be safe to call
// sequentially with different problems; the optimizer never calls one
// concurrently.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (Solution, error)
}

// SolverFunc adapts a function to Solver.
type SolverFunc func(ctx context.Context, p *Problem) (Solution, error)

func (f SolverFunc) Solve(ctx context.Context, p *Problem) (Solution, error) { return f(ctx, p) }

// Validate checks that every coefficient refers to a declared variable.
func (p *Problem) Validate() error {
	n := len(p.Variables)
	check := func(where string, coeffs map[int]float64) error {
		for i, v := range coeffs {
			if i < 0 || i >= n {
				return fmt.Errorf("%s: variable index %d out of range [0,%d)", where, i, n)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%s: coefficient for %s is not finite", where, p.Variables[i])
			}
		}
		return nil
	}
	for _, c := range p.Constraints {
		if err := check("constraint "+c.Label, c.Coefficients); err != nil {
			return err
		}
	}
	return check("objective", p.Objective.Coefficients)
}

// Evaluate returns the objective value of assignment.
func (p *Problem) Evaluate(assignment []bool) float64 {
	total := 0.0
	for i, v := range p.Objective.Coefficients {
		if assignment[i] {
			total += v
		}
	}
	return total
}

// Violated returns the label of the first constraint assignment breaks, or
// "" when every constraint holds.
func (p *Problem) Violated(assignment []bool) string {
	for _, c := range p.Constraints {
		activity := 0.0
		for i, v := range c.Coefficients {
			if assignment[i] {
				activity += v
			}
		}
		switch c.Relation {
		case LessEqual:
			if activity > c.Bound+feasTol {
				return c.Label
			}
		case Equal:
			if math.Abs(activity-c.Bound) > feasTol {
				return c.Label
			}
		}
	}
	return ""
}

// feasTol absorbs float rounding in constraint activity sums.
const feasTol = 1e-9
