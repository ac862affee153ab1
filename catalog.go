package main

import (
	"fmt"
	"slices"
)

// rawStep is the history entry every unprocessed ingredient starts with.
const rawStep = "raw"

// GroupInfo names a category group.
type GroupInfo struct {
	Key  Group
	Name string
}

type tagPair struct {
	primary, secondary Tag
}

// Catalog is the immutable taxonomy: raw ingredients, categories, the tag
// classes and the symmetric pairing table used by convert. Build it with
// NewCatalog; nothing mutates it afterwards.
type Catalog struct {
	Items      []Item
	Categories []Category
	Groups     []GroupInfo
	Primary    []Tag
	Secondary  []Tag
	Generic    []Tag
	Pairings   map[Tag]Tag

	itemByKey     map[string]int
	categoryByKey map[string]int
	categoryByTag map[tagPair]int
	groupNames    map[Group]string
	primarySet    map[Tag]bool
	secondarySet  map[Tag]bool
}

// catalogData is the unvalidated shape produced by the loaders.
type catalogData struct {
	Items      []Item
	Categories []Category
	Groups     []GroupInfo
	Primary    []Tag
	Secondary  []Tag
	Generic    []Tag
	Pairings   map[Tag]Tag
}

// NewCatalog validates d and builds the lookup tables.
func NewCatalog(d catalogData) (*Catalog, error) {
	c := &Catalog{
		Groups:        slices.Clone(d.Groups),
		Primary:       slices.Clone(d.Primary),
		Secondary:     slices.Clone(d.Secondary),
		Generic:       slices.Clone(d.Generic),
		Pairings:      make(map[Tag]Tag, len(d.Pairings)),
		itemByKey:     make(map[string]int, len(d.Items)),
		categoryByKey: make(map[string]int, len(d.Categories)),
		categoryByTag: make(map[tagPair]int, len(d.Categories)),
		groupNames:    make(map[Group]string, len(d.Groups)),
		primarySet:    make(map[Tag]bool, len(d.Primary)),
		secondarySet:  make(map[Tag]bool, len(d.Secondary)),
	}

	for _, t := range d.Primary {
		c.primarySet[t] = true
	}
	for _, t := range d.Secondary {
		if c.primarySet[t] {
			return nil, fmt.Errorf("%w: tag %q is both primary and secondary", ErrInvalidCatalog, t)
		}
		c.secondarySet[t] = true
	}
	if len(c.primarySet) == 0 || len(c.secondarySet) == 0 {
		return nil, fmt.Errorf("%w: primary and secondary tag sets must be non-empty", ErrInvalidCatalog)
	}

	for a, b := range d.Pairings {
		if back, ok := d.Pairings[b]; !ok || back != a {
			return nil, fmt.Errorf("%w: pairing %s->%s is not symmetric", ErrInvalidCatalog, a, b)
		}
		c.Pairings[a] = b
	}

	for _, g := range d.Groups {
		if _, dup := c.groupNames[g.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate group %q", ErrInvalidCatalog, g.Key)
		}
		c.groupNames[g.Key] = g.Name
	}

	for _, it := range d.Items {
		if it.Key == "" {
			return nil, fmt.Errorf("%w: ingredient without key", ErrInvalidCatalog)
		}
		if _, dup := c.itemByKey[it.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate ingredient %q", ErrInvalidCatalog, it.Key)
		}
		if len(it.Parts) != 4 {
			return nil, fmt.Errorf("%w: ingredient %q has %d parts, want 4", ErrInvalidCatalog, it.Key, len(it.Parts))
		}
		raw := Item{
			Key:     it.Key,
			Name:    it.Name,
			History: []string{rawStep},
			Family:  it.Family,
			Parts:   slices.Clone(it.Parts),
		}
		c.itemByKey[it.Key] = len(c.Items)
		c.Items = append(c.Items, raw)
	}

	for _, cat := range d.Categories {
		if _, dup := c.categoryByKey[cat.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, cat.Key)
		}
		if _, ok := c.groupNames[cat.Group]; !ok {
			return nil, fmt.Errorf("%w: category %q has unknown group %q", ErrInvalidCatalog, cat.Key, cat.Group)
		}
		if !c.primarySet[cat.Primary] || !c.secondarySet[cat.Secondary] {
			return nil, fmt.Errorf("%w: category %q requires [%s %s], not a primary/secondary pair",
				ErrInvalidCatalog, cat.Key, cat.Primary, cat.Secondary)
		}
		pair := tagPair{cat.Primary, cat.Secondary}
		if other, dup := c.categoryByTag[pair]; dup {
			return nil, fmt.Errorf("%w: categories %q and %q share tags [%s %s]",
				ErrInvalidCatalog, d.Categories[other].Key, cat.Key, cat.Primary, cat.Secondary)
		}
		c.categoryByKey[cat.Key] = len(c.Categories)
		c.categoryByTag[pair] = len(c.Categories)
		c.Categories = append(c.Categories, cat)
	}

	return c, nil
}

func (c *Catalog) Item(key string) (Item, bool) {
	i, ok := c.itemByKey[key]
	if !ok {
		return Item{}, false
	}
	return c.Items[i], true
}

func (c *Catalog) Category(key string) (Category, bool) {
	i, ok := c.categoryByKey[key]
	if !ok {
		return Category{}, false
	}
	return c.Categories[i], true
}

// CategoryFor looks up the category keyed by a primary/secondary tag pair.
func (c *Catalog) CategoryFor(primary, secondary Tag) (Category, bool) {
	i, ok := c.categoryByTag[tagPair{primary, secondary}]
	if !ok {
		return Category{}, false
	}
	return c.Categories[i], true
}

func (c *Catalog) GroupName(g Group) string {
	if n, ok := c.groupNames[g]; ok {
		return n
	}
	return string(g)
}

func (c *Catalog) IsPrimary(t Tag) bool   { return c.primarySet[t] }
func (c *Catalog) IsSecondary(t Tag) bool { return c.secondarySet[t] }

// Partner returns the pairing-table partner of t.
func (c *Catalog) Partner(t Tag) (Tag, bool) {
	p, ok := c.Pairings[t]
	return p, ok
}

// MissingPairs lists primary/secondary combinations with no category. A
// simulated recipe landing on one of these is a catalog integrity fault.
func (c *Catalog) MissingPairs() [][2]Tag {
	var out [][2]Tag
	for _, p := range c.Primary {
		for _, s := range c.Secondary {
			if _, ok := c.categoryByTag[tagPair{p, s}]; !ok {
				out = append(out, [2]Tag{p, s})
			}
		}
	}
	return out
}

// ItemKeys returns raw ingredient keys in catalog order.
func (c *Catalog) ItemKeys() []string {
	keys := make([]string, len(c.Items))
	for i, it := range c.Items {
		keys[i] = it.Key
	}
	return keys
}

// CategoryKeys returns category keys in catalog order.
func (c *Catalog) CategoryKeys() []string {
	keys := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		keys[i] = cat.Key
	}
	return keys
}
