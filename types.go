package main

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Tag is a symbolic property carried by an item or required by a category.
type Tag string

const (
	TagImpurity  Tag = "impurity"
	TagStimulant Tag = "stimulant"
	TagToxin     Tag = "toxin"
)

type Group string

const (
	GroupHealth     Group = "health"
	GroupSourcery   Group = "sourcery"
	GroupProvisions Group = "provisions"
)

// Score is a fixed-point value in tenths. Every contribution is a multiple
// of 0.1, so sums and comparisons stay exact.
type Score int

func (s Score) Float() float64 { return float64(s) / 10 }

func (s Score) String() string {
	sign := ""
	v := int(s)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%d", sign, v/10, v%10)
}

// MarshalText renders the score as a decimal so reports read naturally.
func (s Score) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Item is a raw ingredient or one of its processed variants. Variants share
// the Key of the raw ingredient they were derived from.
type Item struct {
	Key     string   `json:"key" yaml:"key"`
	Name    string   `json:"name" yaml:"name"`
	History []string `json:"history" yaml:"history"`
	Family  string   `json:"family" yaml:"family"`
	Parts   []Tag    `json:"parts" yaml:"parts"`
}

func (it Item) Has(t Tag) bool {
	for _, p := range it.Parts {
		if p == t {
			return true
		}
	}
	return false
}

// derive returns a copy of the item with one more history step and new parts.
// Slices are copied so variants never alias each other.
func (it Item) derive(step string, parts []Tag) Item {
	hist := make([]string, len(it.History), len(it.History)+1)
	copy(hist, it.History)
	return Item{
		Key:     it.Key,
		Name:    it.Name,
		History: append(hist, step),
		Family:  it.Family,
		Parts:   parts,
	}
}

func (it Item) String() string {
	return fmt.Sprintf("%s (%s)", it.Name, strings.Join(it.History, ", "))
}

type Category struct {
	Key       string `json:"key" yaml:"key"`
	Name      string `json:"name" yaml:"name"`
	Group     Group  `json:"group" yaml:"group"`
	Primary   Tag    `json:"primary" yaml:"primary"`
	Secondary Tag    `json:"secondary" yaml:"secondary"`
}

// Contribution is one itemized score delta with the reason behind it.
type Contribution struct {
	Delta  Score  `json:"delta" yaml:"delta"`
	Reason string `json:"reason" yaml:"reason"`
}

// Recipe is the scored result of simulating one combination. Index is the
// combination's enumeration ordinal and is used for deterministic ordering.
type Recipe struct {
	Category              Category       `json:"category" yaml:"category"`
	Items                 []Item         `json:"items" yaml:"items"`
	Strength              Score          `json:"strength" yaml:"strength"`
	Appeal                Score          `json:"appeal" yaml:"appeal"`
	Effort                int            `json:"effort" yaml:"effort"`
	StrengthContributions []Contribution `json:"strengthContributions" yaml:"strengthContributions"`
	AppealContributions   []Contribution `json:"appealContributions" yaml:"appealContributions"`
	Index                 int            `json:"-" yaml:"-"`
}

// Usage counts how many member items come from each raw ingredient.
func (r *Recipe) Usage() map[string]int {
	u := make(map[string]int, len(r.Items))
	for _, it := range r.Items {
		u[it.Key]++
	}
	return u
}

// Inventory maps raw ingredient keys to the quantity on hand.
type Inventory map[string]int

// Keys returns the inventory keys in catalog order.
func (inv Inventory) Keys(c *Catalog) []string {
	var keys []string
	for _, it := range c.Items {
		if _, ok := inv[it.Key]; ok {
			keys = append(keys, it.Key)
		}
	}
	return keys
}

func sortedKeys[M ~map[K]V, K cmp.Ordered, V any](m M) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
