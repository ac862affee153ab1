package main

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"github.com/agnivade/levenshtein"
	"github.com/tidwall/gjson"
)

//go:embed catalog.json
var embeddedCatalog string

// DefaultCatalog parses the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return parseCatalog(embeddedCatalog)
}

// LoadCatalog reads a catalog file. An empty path selects the embedded one.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	c, err := parseCatalog(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func parseCatalog(dataJSON string) (*Catalog, error) {
	if !gjson.Valid(dataJSON) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidCatalog)
	}
	root := gjson.Parse(dataJSON)

	d := catalogData{
		Primary:   readTags(root.Get("tags.primary")),
		Secondary: readTags(root.Get("tags.secondary")),
		Generic:   readTags(root.Get("tags.generic")),
		Pairings:  make(map[Tag]Tag),
	}

	root.Get("pairings").ForEach(func(k, v gjson.Result) bool {
		d.Pairings[Tag(k.String())] = Tag(v.String())
		return true
	})

	root.Get("groups").ForEach(func(_, v gjson.Result) bool {
		d.Groups = append(d.Groups, GroupInfo{
			Key:  Group(v.Get("key").String()),
			Name: v.Get("name").String(),
		})
		return true
	})

	root.Get("ingredients").ForEach(func(_, v gjson.Result) bool {
		d.Items = append(d.Items, Item{
			Key:    v.Get("key").String(),
			Name:   v.Get("name").String(),
			Family: v.Get("family").String(),
			Parts:  readTags(v.Get("parts")),
		})
		return true
	})

	var parseErr error
	root.Get("categories").ForEach(func(_, v gjson.Result) bool {
		parts := readTags(v.Get("parts"))
		if len(parts) != 2 {
			parseErr = fmt.Errorf("%w: category %q has %d parts, want 2",
				ErrInvalidCatalog, v.Get("key").String(), len(parts))
			return false
		}
		d.Categories = append(d.Categories, Category{
			Key:       v.Get("key").String(),
			Name:      v.Get("name").String(),
			Group:     Group(v.Get("group").String()),
			Primary:   parts[0],
			Secondary: parts[1],
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return NewCatalog(d)
}

func readTags(v gjson.Result) []Tag {
	var out []Tag
	v.ForEach(func(_, t gjson.Result) bool {
		out = append(out, Tag(t.String()))
		return true
	})
	return out
}

// ParseInventory reads a JSON object of ingredient key to quantity, e.g. the
// "ingredients" field of a Lambda request.
func ParseInventory(c *Catalog, inventoryJSON string) (Inventory, error) {
	if !gjson.Valid(inventoryJSON) {
		return nil, fmt.Errorf("%w: inventory is not valid JSON", ErrInvalidConfig)
	}
	v := gjson.Parse(inventoryJSON)
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: inventory must be an object", ErrInvalidConfig)
	}
	inv := make(Inventory)
	var err error
	v.ForEach(func(k, q gjson.Result) bool {
		var n int
		n, err = wholeNumber(q, fmt.Sprintf("quantity for %q", k.String()))
		if err != nil {
			return false
		}
		inv[k.String()] = n
		return true
	})
	if err != nil {
		return nil, err
	}
	if err := ValidateInventory(c, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func wholeNumber(v gjson.Result, what string) (int, error) {
	if v.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidConfig, what)
	}
	if v.Num != math.Trunc(v.Num) || math.Abs(v.Num) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %s must be a whole number, got %s", ErrInvalidConfig, what, v.Raw)
	}
	return int(v.Num), nil
}

// MaxRequestArcanePower caps the arity bound a remote request may ask for.
// Enumeration cost grows combinatorially with it.
const MaxRequestArcanePower = 6

// ParseRequest decodes a recommend request body into the inventory and the
// config to run it with. Fields left out keep their DefaultConfig value.
func ParseRequest(c *Catalog, body string) (Inventory, Config, error) {
	cfg := DefaultConfig()
	if !gjson.Valid(body) {
		return nil, cfg, fmt.Errorf("%w: request is not valid JSON", ErrInvalidConfig)
	}
	req := gjson.Parse(body)

	ingredients := req.Get("ingredients")
	if !ingredients.Exists() {
		return nil, cfg, fmt.Errorf("%w: missing ingredients field", ErrInvalidConfig)
	}
	inv, err := ParseInventory(c, ingredients.Raw)
	if err != nil {
		return nil, cfg, err
	}

	if v := req.Get("arcanePower"); v.Exists() {
		n, err := wholeNumber(v, "arcanePower")
		if err != nil {
			return nil, cfg, err
		}
		if n > MaxRequestArcanePower {
			return nil, cfg, fmt.Errorf("%w: arcanePower %d exceeds %d", ErrInvalidConfig, n, MaxRequestArcanePower)
		}
		cfg.ArcanePower = n
	}
	if v := req.Get("strategy"); v.Exists() {
		cfg.Strategy = v.String()
	}
	if v := req.Get("processes"); v.Exists() {
		cfg.Processes = nil
		v.ForEach(func(_, p gjson.Result) bool {
			cfg.Processes = append(cfg.Processes, p.String())
			return true
		})
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, err
	}
	return inv, cfg, nil
}

// ValidateInventory rejects keys missing from the catalog and negative
// quantities.
func ValidateInventory(c *Catalog, inv Inventory) error {
	for _, key := range sortedKeys(inv) {
		if _, ok := c.Item(key); !ok {
			return unknownKeyError(ErrUnknownIngredient, key, c.ItemKeys())
		}
		if inv[key] < 0 {
			return fmt.Errorf("%w: negative quantity %d for %q", ErrInvalidConfig, inv[key], key)
		}
	}
	return nil
}

// suggestKey returns the closest known key within a small edit distance.
func suggestKey(key string, known []string) string {
	best, bestDist := "", -1
	for _, k := range known {
		d := levenshtein.ComputeDistance(key, k)
		if d > suggestLimit(len(k)) {
			continue
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}

func suggestLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	}
	return 3
}
