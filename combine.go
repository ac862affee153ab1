package main

import (
	"context"
	"fmt"
)

// Combination is one candidate subset of the item pool. Index is its global
// ordinal in enumeration order.
type Combination struct {
	Index int
	Items []Item
}

// EachCombination visits every r-subset of pool for r = 2..maxR in
// lexicographic index order, skipping subsets where two members share a base
// key. A branch is abandoned as soon as a duplicate key is placed, so skipped
// subsets cost nothing. visit receives a fresh slice it may keep. Returning
// false from visit, or cancelling ctx, stops the walk; a walk stopped while
// ctx is done returns ctx.Err().
func EachCombination(ctx context.Context, pool []Item, maxR int, visit func(Combination) bool) error {
	if maxR < 2 {
		return fmt.Errorf("%w: arity bound %d, want >= 2", ErrInvalidConfig, maxR)
	}

	index := 0
	stopped := false
	picked := make([]int, 0, maxR)
	used := make(map[string]int, maxR)

	var walk func(start, r int) error
	walk = func(start, r int) error {
		if len(picked) == r {
			items := make([]Item, r)
			for i, p := range picked {
				items[i] = pool[p]
			}
			if !visit(Combination{Index: index, Items: items}) {
				stopped = true
			}
			index++
			return nil
		}
		// Leave room for the remaining members.
		last := len(pool) - (r - len(picked))
		for i := start; i <= last && !stopped; i++ {
			key := pool[i].Key
			if used[key] > 0 {
				continue
			}
			if index%4096 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			used[key]++
			picked = append(picked, i)
			if err := walk(i+1, r); err != nil {
				return err
			}
			picked = picked[:len(picked)-1]
			used[key]--
		}
		return nil
	}

	for r := 2; r <= maxR && !stopped; r++ {
		if err := walk(0, r); err != nil {
			return err
		}
	}
	if stopped {
		return ctx.Err()
	}
	return nil
}

// Combine collects every valid combination. Prefer EachCombination for large
// pools; the result grows combinatorially with the pool and maxR.
func Combine(pool []Item, maxR int) ([]Combination, error) {
	var out []Combination
	err := EachCombination(context.Background(), pool, maxR, func(c Combination) bool {
		out = append(out, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
