package main

import (
	"fmt"
	"slices"
	"strings"
)

// Stage is one transformation applied by the expander.
type Stage string

const (
	StageSplit   Stage = "split"
	StagePurify  Stage = "purify"
	StageConvert Stage = "convert"
)

// stageOrder is the fixed application order; callers only choose which
// stages are enabled.
var stageOrder = []Stage{StageSplit, StagePurify, StageConvert}

var stageAliases = map[string]Stage{
	"split":   StageSplit,
	"cut":     StageSplit,
	"purify":  StagePurify,
	"ferment": StagePurify,
	"convert": StageConvert,
	"infuse":  StageConvert,
}

// ParseStages normalises stage names (including the cut/ferment/infuse
// aliases) and drops duplicates.
func ParseStages(names []string) ([]Stage, error) {
	var out []Stage
	for _, n := range names {
		s, ok := stageAliases[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown process %q", ErrInvalidConfig, n)
		}
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out, nil
}

// splitCut is one of the four fixed halves kept by split. Each original part
// index appears in exactly two cuts.
type splitCut struct {
	step string
	a, b int
}

var splitCuts = [4]splitCut{
	{"crush", 1, 2},   // vertical, left half
	{"blanch", 0, 1},  // horizontal, top half
	{"dry", 0, 3},     // vertical, right half
	{"pickled", 2, 3}, // horizontal, bottom half
}

// Split halves a 4-part item into its four fixed 2-part variants. Items
// without exactly four parts have nothing to split.
func Split(it Item) []Item {
	if len(it.Parts) != 4 {
		return nil
	}
	out := make([]Item, 0, len(splitCuts))
	for _, cut := range splitCuts {
		out = append(out, it.derive(cut.step, []Tag{it.Parts[cut.a], it.Parts[cut.b]}))
	}
	return out
}

// Purify turns every impurity into a stimulant. ok is false when the item
// has no impurity.
func Purify(it Item) (Item, bool) {
	if !it.Has(TagImpurity) {
		return Item{}, false
	}
	parts := make([]Tag, len(it.Parts))
	for i, p := range it.Parts {
		if p == TagImpurity {
			p = TagStimulant
		}
		parts[i] = p
	}
	return it.derive("ferment", parts), true
}

// Convert swaps every part found in the pairing table for its partner. ok is
// false when no part is pairable.
func Convert(c *Catalog, it Item) (Item, bool) {
	applicable := false
	parts := make([]Tag, len(it.Parts))
	for i, p := range it.Parts {
		if partner, ok := c.Partner(p); ok {
			p = partner
			applicable = true
		}
		parts[i] = p
	}
	if !applicable {
		return Item{}, false
	}
	return it.derive("infuse", parts), true
}

// Expand applies the enabled stages to one raw item. Split runs on the item
// alone; purify then runs over everything accumulated so far, and convert
// over that larger set. The original item is always the first element.
func Expand(c *Catalog, it Item, stages []Stage) []Item {
	result := []Item{it}
	for _, s := range stageOrder {
		if !slices.Contains(stages, s) {
			continue
		}
		switch s {
		case StageSplit:
			result = append(result, Split(it)...)
		case StagePurify:
			n := len(result)
			for i := 0; i < n; i++ {
				if v, ok := Purify(result[i]); ok {
					result = append(result, v)
				}
			}
		case StageConvert:
			n := len(result)
			for i := 0; i < n; i++ {
				if v, ok := Convert(c, result[i]); ok {
					result = append(result, v)
				}
			}
		}
	}
	return result
}

// ExpandAll expands each item in order and flattens the variants.
func ExpandAll(c *Catalog, items []Item, stages []Stage) []Item {
	var out []Item
	for _, it := range items {
		out = append(out, Expand(c, it, stages)...)
	}
	return out
}
