package main

import (
	"cmp"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"slices"
)

// BranchAndBound is an exact Solver for binary linear programs. It is meant
// for the small problems the global optimizer builds (tens to a few thousand
// candidates) and refuses anything above MaxVariables.
type BranchAndBound struct {
	// MaxVariables caps the problem size; <= 0 disables the cap.
	MaxVariables int
	Logger       *slog.Logger
}

// ── Search state ────────────────────────────────────────────────────

type bbEntry struct {
	row  int
	coef float64
}

type bbRow struct {
	label    string
	relation Relation
	bound    float64
	// sufMin[g] / sufMax[g] are the lowest / highest activity groups g.. can
	// still add (choosing nothing in a group adds 0).
	sufMin []float64
	sufMax []float64
}

// capacityRow is a <= row with coefficients of at least 1 that contains
// whole groups. At most floor(bound-activity) of its remaining groups can
// still be chosen, which tightens the objective bound under quotas and
// scarce ingredients.
type capacityRow struct {
	row    int
	groups []int // sorted by gain descending
}

type bbSearch struct {
	ctx context.Context

	obj    []float64 // sense-adjusted so the search always maximizes
	cols   [][]bbEntry
	rows   []bbRow
	groups [][]int // members, ordered by obj descending
	gain   []float64
	caps   []capacityRow
	// sufFree[g] is the total gain of groups g.. outside every capacity row.
	sufFree []float64

	activity []float64
	x        []bool
	value    float64

	found   bool
	best    []bool
	bestVal float64
	nodes   int

	// frontier[g] lists rows with variables both before and from group g;
	// only their activity distinguishes two partial assignments at depth g.
	frontier [][]int
	// seen maps a (depth, frontier activity) state to the best value it was
	// entered with. Entering it again with no more value cannot improve.
	seen   map[string]float64
	keyBuf []byte
}

// memoLimit caps the number of remembered states.
const memoLimit = 1 << 20

func (s *BranchAndBound) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Solve finds an optimal assignment or reports the problem infeasible.
// Binary domains are bounded, so StatusUnbounded is never returned.
func (s *BranchAndBound) Solve(ctx context.Context, p *Problem) (Solution, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}
	n := len(p.Variables)
	if s.MaxVariables > 0 && n > s.MaxVariables {
		return Solution{}, fmt.Errorf("%w: %d variables, limit %d", ErrProblemTooLarge, n, s.MaxVariables)
	}

	st := newSearch(ctx, p)
	if err := st.dfs(0); err != nil {
		return Solution{}, err
	}

	s.logger().Debug("branch and bound finished",
		"problem", p.Name, "variables", n, "groups", len(st.groups),
		"nodes", st.nodes, "found", st.found)

	if !st.found {
		return Solution{Status: StatusInfeasible}, nil
	}
	return Solution{
		Status:     StatusOptimal,
		Assignment: st.best,
		Value:      p.Evaluate(st.best),
	}, nil
}

func newSearch(ctx context.Context, p *Problem) *bbSearch {
	n := len(p.Variables)
	st := &bbSearch{
		ctx:      ctx,
		obj:      make([]float64, n),
		cols:     make([][]bbEntry, n),
		activity: make([]float64, len(p.Constraints)),
		x:        make([]bool, n),
	}

	sign := 1.0
	if p.Objective.Sense == Minimize {
		sign = -1
	}
	for i, v := range p.Objective.Coefficients {
		st.obj[i] = sign * v
	}

	for ri, c := range p.Constraints {
		for _, i := range sortedKeys(c.Coefficients) {
			st.cols[i] = append(st.cols[i], bbEntry{ri, c.Coefficients[i]})
		}
	}

	st.groups = exclusiveGroups(p, n)
	for _, g := range st.groups {
		slices.SortStableFunc(g, func(a, b int) int {
			if c := cmp.Compare(st.obj[b], st.obj[a]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
	}

	ng := len(st.groups)
	groupOf := make([]int, n)
	st.gain = make([]float64, ng)
	for g, members := range st.groups {
		for _, m := range members {
			groupOf[m] = g
			st.gain[g] = math.Max(st.gain[g], st.obj[m])
		}
	}

	st.rows = make([]bbRow, len(p.Constraints))
	for ri, c := range p.Constraints {
		lo := make([]float64, ng)
		hi := make([]float64, ng)
		for i, v := range c.Coefficients {
			g := groupOf[i]
			lo[g] = math.Min(lo[g], v)
			hi[g] = math.Max(hi[g], v)
		}
		row := bbRow{
			label:    c.Label,
			relation: c.Relation,
			bound:    c.Bound,
			sufMin:   make([]float64, ng+1),
			sufMax:   make([]float64, ng+1),
		}
		for g := ng - 1; g >= 0; g-- {
			row.sufMin[g] = row.sufMin[g+1] + lo[g]
			row.sufMax[g] = row.sufMax[g+1] + hi[g]
		}
		st.rows[ri] = row
	}

	st.frontier = make([][]int, ng+1)
	for ri, c := range p.Constraints {
		first, last := ng, -1
		for i := range c.Coefficients {
			first = min(first, groupOf[i])
			last = max(last, groupOf[i])
		}
		for g := first + 1; g <= last; g++ {
			st.frontier[g] = append(st.frontier[g], ri)
		}
	}
	st.seen = make(map[string]float64)

	st.caps = capacityRows(p, st.groups, groupOf, st.gain)
	inCap := make([]bool, ng)
	for _, cr := range st.caps {
		for _, g := range cr.groups {
			inCap[g] = true
		}
	}
	st.sufFree = make([]float64, ng+1)
	for g := ng - 1; g >= 0; g-- {
		st.sufFree[g] = st.sufFree[g+1]
		if !inCap[g] {
			st.sufFree[g] += st.gain[g]
		}
	}
	return st
}

// exclusiveGroups partitions variables using "sum of x <= 1" rows: members of
// one group are mutually exclusive, so the search picks one or none. Variables
// outside every such row become singleton groups. Groups are ordered by their
// lowest variable index.
func exclusiveGroups(p *Problem, n int) [][]int {
	assigned := make([]bool, n)
	var groups [][]int
	for _, c := range p.Constraints {
		if !isAtMostOne(c) {
			continue
		}
		var g []int
		for _, i := range sortedKeys(c.Coefficients) {
			if !assigned[i] {
				assigned[i] = true
				g = append(g, i)
			}
		}
		if len(g) > 0 {
			groups = append(groups, g)
		}
	}
	for i := 0; i < n; i++ {
		if !assigned[i] {
			groups = append(groups, []int{i})
		}
	}
	slices.SortFunc(groups, func(a, b []int) int { return cmp.Compare(a[0], b[0]) })
	return groups
}

func isAtMostOne(c Constraint) bool {
	if c.Relation != LessEqual || c.Bound < 1 || c.Bound >= 2 || len(c.Coefficients) == 0 {
		return false
	}
	for _, v := range c.Coefficients {
		if v != 1 {
			return false
		}
	}
	return true
}

// capacityRows buckets groups under <= rows whose coefficients are at least
// 1 across whole groups, so every chosen group uses up a unit of slack. A
// group sits in at most one bucket; rows that cut deepest at the root claim
// their groups first. Inventory rows land here as well as quota rows.
func capacityRows(p *Problem, groups [][]int, groupOf []int, gain []float64) []capacityRow {
	type cand struct {
		row    int
		excess float64
		groups []int
	}
	var cands []cand
	for ri, c := range p.Constraints {
		if c.Relation != LessEqual || len(c.Coefficients) == 0 {
			continue
		}
		covering := true
		for _, v := range c.Coefficients {
			if v < 1 {
				covering = false
				break
			}
		}
		if !covering {
			continue
		}
		seen := map[int]bool{}
		for i := range c.Coefficients {
			seen[groupOf[i]] = true
		}
		whole := true
		for g := range seen {
			for _, m := range groups[g] {
				if _, ok := c.Coefficients[m]; !ok {
					whole = false
					break
				}
			}
		}
		// A single group under a bound of 1 or more is no tighter than the
		// group itself.
		if !whole || (len(seen) < 2 && c.Bound >= 1) {
			continue
		}
		cands = append(cands, cand{ri, float64(len(seen)) - c.Bound, sortedKeys(seen)})
	}
	slices.SortStableFunc(cands, func(a, b cand) int {
		if c := cmp.Compare(b.excess, a.excess); c != 0 {
			return c
		}
		return cmp.Compare(len(b.groups), len(a.groups))
	})

	taken := make([]bool, len(groups))
	var out []capacityRow
	for _, c := range cands {
		var gs []int
		for _, g := range c.groups {
			if !taken[g] {
				taken[g] = true
				gs = append(gs, g)
			}
		}
		if len(gs) == 0 {
			continue
		}
		slices.SortStableFunc(gs, func(a, b int) int { return cmp.Compare(gain[b], gain[a]) })
		out = append(out, capacityRow{row: c.row, groups: gs})
	}
	return out
}

// ── Depth-first search over groups ──────────────────────────────────

func (st *bbSearch) dfs(g int) error {
	st.nodes++
	if st.nodes%1024 == 1 {
		if err := st.ctx.Err(); err != nil {
			return err
		}
	}

	for ri := range st.rows {
		row := &st.rows[ri]
		lo := st.activity[ri] + row.sufMin[g]
		if lo > row.bound+feasTol {
			return nil
		}
		if row.relation == Equal && st.activity[ri]+row.sufMax[g] < row.bound-feasTol {
			return nil
		}
	}

	if g < len(st.groups) {
		key := st.stateKey(g)
		if v, ok := st.seen[key]; ok && st.value <= v+feasTol {
			return nil
		}
		if len(st.seen) < memoLimit {
			st.seen[key] = st.value
		}
	}

	if g == len(st.groups) {
		if !st.found || st.value > st.bestVal+feasTol {
			st.found = true
			st.bestVal = st.value
			st.best = slices.Clone(st.x)
		}
		return nil
	}

	if st.found && st.value+st.optimistic(g) <= st.bestVal+feasTol {
		return nil
	}

	for _, m := range st.groups[g] {
		st.set(m, true)
		err := st.dfs(g + 1)
		st.set(m, false)
		if err != nil {
			return err
		}
	}
	return st.dfs(g + 1)
}

func (st *bbSearch) stateKey(g int) string {
	b := binary.LittleEndian.AppendUint32(st.keyBuf[:0], uint32(g))
	for _, ri := range st.frontier[g] {
		a := st.activity[ri]
		if a == 0 {
			a = 0 // fold -0
		}
		b = binary.LittleEndian.AppendUint64(b, math.Float64bits(a))
	}
	st.keyBuf = b
	return string(b)
}

func (st *bbSearch) set(i int, on bool) {
	sign := 1.0
	if !on {
		sign = -1
	}
	st.x[i] = on
	st.value += sign * st.obj[i]
	for _, e := range st.cols[i] {
		st.activity[e.row] += sign * e.coef
	}
}

// optimistic bounds the objective groups g.. can still add.
func (st *bbSearch) optimistic(g int) float64 {
	total := st.sufFree[g]
	for _, cr := range st.caps {
		k := int(math.Floor(st.rows[cr.row].bound - st.activity[cr.row] + feasTol))
		for _, gid := range cr.groups {
			if k <= 0 {
				break
			}
			if gid >= g {
				total += st.gain[gid]
				k--
			}
		}
	}
	return total
}
