package main

import (
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// EnumerateOptions tunes EnumerateAndSimulate.
type EnumerateOptions struct {
	// MaxR is the arity bound: the largest combination size tried.
	MaxR int
	// Workers is the number of simulation goroutines; <= 0 means GOMAXPROCS.
	Workers int
	// Progress, when set, is called with the number of combinations simulated
	// since the previous call. It is called from several goroutines.
	Progress func(n int)
}

const progressBatch = 1024

// EnumerateAndSimulate streams every valid combination of pool through the
// simulator on a pool of workers and returns the resulting recipes in
// enumeration order. Output order never depends on which worker finished
// first. The first integrity fault cancels the remaining work.
func EnumerateAndSimulate(ctx context.Context, c *Catalog, pool []Item, opts EnumerateOptions) ([]Recipe, error) {
	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	comboCh := make(chan Combination, numWorkers*64)

	g.Go(func() error {
		defer close(comboCh)
		return EachCombination(gctx, pool, opts.MaxR, func(combo Combination) bool {
			if gctx.Err() != nil {
				return false
			}
			select {
			case comboCh <- combo:
				return true
			case <-gctx.Done():
				return false
			}
		})
	})

	partial := make([][]Recipe, numWorkers)
	for w := 0; w < numWorkers; w++ {
		g.Go(func() error {
			var found []Recipe
			pending := 0
			for combo := range comboCh {
				r, ok, err := Simulate(c, combo.Items)
				if err != nil {
					return err
				}
				if ok {
					r.Index = combo.Index
					found = append(found, r)
				}
				if opts.Progress != nil {
					if pending++; pending == progressBatch {
						opts.Progress(pending)
						pending = 0
					}
				}
			}
			if opts.Progress != nil && pending > 0 {
				opts.Progress(pending)
			}
			partial[w] = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var recipes []Recipe
	for _, p := range partial {
		recipes = append(recipes, p...)
	}
	slices.SortFunc(recipes, func(a, b Recipe) int { return a.Index - b.Index })
	return recipes, nil
}
