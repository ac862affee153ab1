package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// EligibleTags is the tag set an item may carry to be worth combining for
// category: the generic flavour tags, the category's own two tags, and the
// partner of its secondary tag (convert can turn the partner into it).
func EligibleTags(c *Catalog, category Category) map[Tag]bool {
	tags := make(map[Tag]bool, len(c.Generic)+3)
	for _, t := range c.Generic {
		tags[t] = true
	}
	tags[category.Primary] = true
	tags[category.Secondary] = true
	if partner, ok := c.Partner(category.Secondary); ok {
		tags[partner] = true
	}
	return tags
}

// EligibleItems keeps items whose parts all lie within tags.
func EligibleItems(pool []Item, tags map[Tag]bool) []Item {
	var out []Item
	for _, it := range pool {
		if isSubset(it.Parts, tags) {
			out = append(out, it)
		}
	}
	return out
}

func isSubset(parts []Tag, tags map[Tag]bool) bool {
	for _, p := range parts {
		if !tags[p] {
			return false
		}
	}
	return true
}

func FilterByCategory(recipes []Recipe, category Category) []Recipe {
	var out []Recipe
	for _, r := range recipes {
		if r.Category.Key == category.Key {
			out = append(out, r)
		}
	}
	return out
}

// SelectStrongest keeps the recipes whose strength equals the maximum in
// recipes. Scores are fixed-point so the comparison is exact.
func SelectStrongest(recipes []Recipe) []Recipe {
	if len(recipes) == 0 {
		return nil
	}
	best := slices.MaxFunc(recipes, func(a, b Recipe) int { return cmp.Compare(a.Strength, b.Strength) }).Strength
	var out []Recipe
	for _, r := range recipes {
		if r.Strength == best {
			out = append(out, r)
		}
	}
	return out
}

// SelectCheapest orders recipes by effort, then enumeration index, and
// returns at most n of them. n <= 0 keeps all.
func SelectCheapest(recipes []Recipe, n int) []Recipe {
	out := slices.Clone(recipes)
	slices.SortStableFunc(out, func(a, b Recipe) int {
		if c := cmp.Compare(a.Effort, b.Effort); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// PruneDominated drops every recipe for which another recipe of the same
// category uses a sub-multiset of its ingredients at no less strength.
// Exchanging a recipe for its dominator keeps every inventory, quota and
// per-category row satisfied and never lowers strength, so both optimizer
// phases reach the same optimum on the pruned set. Among exact ties the
// cheaper, then earlier, recipe survives. Survivors keep their input order.
func PruneDominated(recipes []Recipe) []Recipe {
	order := make([]int, len(recipes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ra, rb := &recipes[a], &recipes[b]
		if c := cmp.Compare(ra.Category.Key, rb.Category.Key); c != 0 {
			return c
		}
		if c := cmp.Compare(rb.Strength, ra.Strength); c != 0 {
			return c
		}
		return cmp.Compare(ra.Effort, rb.Effort)
	})

	keep := make([]bool, len(recipes))
	var kept []map[string]int
	category := ""
	for _, i := range order {
		r := &recipes[i]
		if r.Category.Key != category {
			category, kept = r.Category.Key, kept[:0]
		}
		u := r.Usage()
		if slices.ContainsFunc(kept, func(k map[string]int) bool { return usesWithin(k, u) }) {
			continue
		}
		keep[i] = true
		kept = append(kept, u)
	}

	var out []Recipe
	for i, r := range recipes {
		if keep[i] {
			out = append(out, r)
		}
	}
	return out
}

// usesWithin reports whether usage a needs no more of any ingredient than b.
func usesWithin(a, b map[string]int) bool {
	for key, n := range a {
		if b[key] < n {
			return false
		}
	}
	return true
}

// LocalSelector finds the strongest, then cheapest, recipes per category.
type LocalSelector struct {
	Catalog   *Catalog
	Stages    []Stage
	Enumerate EnumerateOptions
	// PerCategory caps how many recipes are kept per category.
	PerCategory int
	Logger      *slog.Logger
}

// BestForCategory restricts the processed pool to items eligible for
// category before enumerating, then applies the match, strongest and
// cheapest filters. Only ingredients present in inv are used; a nil inv
// means the whole catalog.
func (s *LocalSelector) BestForCategory(ctx context.Context, category Category, inv Inventory) ([]Recipe, error) {
	pool := EligibleItems(ExpandAll(s.Catalog, s.rawItems(inv), s.Stages), EligibleTags(s.Catalog, category))

	recipes, err := EnumerateAndSimulate(ctx, s.Catalog, pool, s.Enumerate)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", category.Key, err)
	}
	matching := FilterByCategory(recipes, category)
	strongest := SelectStrongest(matching)
	best := SelectCheapest(strongest, s.PerCategory)

	s.logger().Debug("local selection",
		"category", category.Key,
		"ingredients", len(pool),
		"recipes", len(recipes),
		"matching", len(matching),
		"strongest", len(strongest),
		"kept", len(best))
	return best, nil
}

// BestForAll runs BestForCategory over every catalog category in order and
// concatenates the results.
func (s *LocalSelector) BestForAll(ctx context.Context, inv Inventory) ([]Recipe, error) {
	var all []Recipe
	for _, category := range s.Catalog.Categories {
		best, err := s.BestForCategory(ctx, category, inv)
		if err != nil {
			return nil, err
		}
		all = append(all, best...)
	}
	return all, nil
}

func (s *LocalSelector) rawItems(inv Inventory) []Item {
	if inv == nil {
		return s.Catalog.Items
	}
	var items []Item
	for _, it := range s.Catalog.Items {
		if inv[it.Key] > 0 {
			items = append(items, it)
		}
	}
	return items
}

func (s *LocalSelector) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
