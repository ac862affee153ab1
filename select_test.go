package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEligibleTags(t *testing.T) {
	c := testCatalog(t)
	speed, _ := c.Category("speed")

	tags := EligibleTags(c, speed)
	// nine generic tags (cat is one of them) plus fire and its partner
	assert.Len(t, tags, 11)
	for _, want := range []Tag{"cat", "fire", "water", "stimulant", "toxin"} {
		assert.True(t, tags[want], want)
	}
	for _, not := range []Tag{"bone", "aether", "earth"} {
		assert.False(t, tags[not], not)
	}

	pool := ExpandAll(c, []Item{mustItem(t, c, "catnip"), mustItem(t, c, "wormwood")}, []Stage{StageSplit})
	eligible := EligibleItems(pool, tags)
	// all five catnip items; wormwood only as crush [antitoxin bitter] and blanch [fire antitoxin]
	assert.Len(t, eligible, 7)
}

func recipeWith(key string, index int, strength Score, effort int) Recipe {
	return Recipe{Category: Category{Key: key}, Index: index, Strength: strength, Effort: effort}
}

func TestSelectStrongest(t *testing.T) {
	assert.Empty(t, SelectStrongest(nil))

	in := []Recipe{
		recipeWith("speed", 0, -10, 1),
		recipeWith("speed", 1, -5, 2),
		recipeWith("speed", 2, -5, 3),
	}
	got := SelectStrongest(in)
	require.Len(t, got, 2, "an all-negative category still has a strongest recipe")
	assert.Equal(t, 1, got[0].Index)
	assert.Equal(t, 2, got[1].Index)

	in = append(in, recipeWith("speed", 3, 25, 9))
	got = SelectStrongest(in)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Index)
}

func TestSelectCheapest(t *testing.T) {
	in := []Recipe{
		recipeWith("speed", 0, 5, 4),
		recipeWith("speed", 1, 5, 2),
		recipeWith("speed", 2, 5, 4),
		recipeWith("speed", 3, 5, 3),
	}

	got := SelectCheapest(in, 0)
	indexes := func(rs []Recipe) []int {
		var out []int
		for _, r := range rs {
			out = append(out, r.Index)
		}
		return out
	}
	assert.Equal(t, []int{1, 3, 0, 2}, indexes(got))
	assert.Equal(t, []int{1, 3}, indexes(SelectCheapest(in, 2)))
	assert.Equal(t, []int{0, 1, 2, 3}, indexes(in), "input is not reordered")
}

func TestFilterByCategory(t *testing.T) {
	in := []Recipe{recipeWith("speed", 0, 0, 0), recipeWith("slow", 1, 0, 0), recipeWith("speed", 2, 0, 0)}
	got := FilterByCategory(in, Category{Key: "speed"})
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[1].Index)
}

func TestBestForCategory(t *testing.T) {
	c := testCatalog(t)
	stages := []Stage{StageSplit, StagePurify, StageConvert}
	opts := EnumerateOptions{MaxR: 2, Workers: 4}
	sel := &LocalSelector{Catalog: c, Stages: stages, Enumerate: opts, PerCategory: 3}

	speed, _ := c.Category("speed")
	got, err := sel.BestForCategory(context.Background(), speed, nil)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 3)

	// The eligibility filter only drops items that could never land in this
	// category, so the local best equals the unfiltered maximum.
	all, err := EnumerateAndSimulate(context.Background(), c, ExpandAll(c, c.Items, stages), opts)
	require.NoError(t, err)
	want := SelectStrongest(FilterByCategory(all, speed))
	require.NotEmpty(t, want)

	for i, r := range got {
		assert.Equal(t, "speed", r.Category.Key)
		assert.Equal(t, want[0].Strength, r.Strength)
		if i > 0 {
			assert.GreaterOrEqual(t, r.Effort, got[i-1].Effort)
		}
	}
}

func TestBestForCategoryRespectsInventory(t *testing.T) {
	c := testCatalog(t)
	sel := &LocalSelector{
		Catalog:     c,
		Stages:      []Stage{StageSplit, StagePurify, StageConvert},
		Enumerate:   EnumerateOptions{MaxR: 2},
		PerCategory: 5,
	}
	speed, _ := c.Category("speed")

	got, err := sel.BestForCategory(context.Background(), speed, Inventory{"catnip": 1, "lupine": 1, "sage": 0})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	// fermented catnip [stimulant stimulant cat tasty] with raw lupine
	assert.Equal(t, Score(25), got[0].Strength)
	assert.Equal(t, 3, got[0].Effort)
	for _, r := range got {
		for _, it := range r.Items {
			assert.Contains(t, []string{"catnip", "lupine"}, it.Key)
		}
	}

	none, err := sel.BestForCategory(context.Background(), speed, Inventory{"catnip": 1})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBestForAll(t *testing.T) {
	c := testCatalog(t)
	sel := &LocalSelector{
		Catalog:     c,
		Stages:      []Stage{StageSplit, StagePurify, StageConvert},
		Enumerate:   EnumerateOptions{MaxR: 2},
		PerCategory: 1,
	}
	got, err := sel.BestForAll(context.Background(), Inventory{"catnip": 1, "lupine": 1})
	require.NoError(t, err)

	var keys []string
	for _, r := range got {
		keys = append(keys, r.Category.Key)
	}
	// lupine's fire converts to water, so both cat potions are reachable
	assert.Equal(t, []string{"speed", "slow"}, keys)
}

func TestPruneDominated(t *testing.T) {
	c := testCatalog(t)
	withEffort := func(r Recipe, effort int) Recipe {
		r.Effort = effort
		return r
	}
	in := []Recipe{
		candidate(t, c, "speed", 10, "catnip", "lupine", "sage"), // 0: same keys as 2, weaker
		candidate(t, c, "speed", 10, "catnip", "lupine"),         // 1: fewer keys than 2
		candidate(t, c, "speed", 20, "catnip", "lupine", "sage"), // 2
		withEffort(candidate(t, c, "speed", 20, "thyme", "lupine"), 6),
		withEffort(candidate(t, c, "speed", 20, "lupine", "thyme"), 3), // 4: cheaper twin wins
		candidate(t, c, "slow", 5, "catnip", "lupine", "sage"), // 5: other category untouched
		candidate(t, c, "speed", 5, "wormwood", "catnip"),      // 6: disjoint keys stay
	}
	got := PruneDominated(in)

	want := []Recipe{in[1], in[2], in[4], in[5], in[6]}
	assert.Equal(t, want, got)
	assert.Empty(t, PruneDominated(nil))
}

func TestPruneDominatedKeepsOptimum(t *testing.T) {
	c := testCatalog(t)
	raw := []Item{
		mustItem(t, c, "catnip"), mustItem(t, c, "lupine"),
		mustItem(t, c, "sage"), mustItem(t, c, "wormwood"), mustItem(t, c, "thyme"),
	}
	pool := ExpandAll(c, raw, []Stage{StageSplit, StagePurify, StageConvert})
	all, err := EnumerateAndSimulate(context.Background(), c, pool, EnumerateOptions{MaxR: 3, Workers: 2})
	require.NoError(t, err)

	pruned := PruneDominated(all)
	require.NotEmpty(t, pruned)
	assert.Less(t, len(pruned), len(all))

	inv := Inventory{}
	for _, it := range raw {
		inv[it.Key] = 1
	}
	full, err := newOptimizer(c).Optimize(context.Background(), all, inv)
	require.NoError(t, err)
	reduced, err := newOptimizer(c).Optimize(context.Background(), pruned, inv)
	require.NoError(t, err)

	total := func(rs []Recipe) (s Score) {
		for _, r := range rs {
			s += r.Strength
		}
		return s
	}
	assert.Len(t, reduced, len(full))
	assert.Equal(t, total(full), total(reduced))
}
