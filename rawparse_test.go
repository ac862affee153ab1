package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := DefaultCatalog()
	require.NoError(t, err)
	return c
}

func mustItem(t *testing.T, c *Catalog, key string) Item {
	t.Helper()
	it, ok := c.Item(key)
	require.True(t, ok, "ingredient %q", key)
	return it
}

func TestDefaultCatalog(t *testing.T) {
	c := testCatalog(t)

	assert.Len(t, c.Items, 14)
	assert.Len(t, c.Categories, 16)
	assert.Len(t, c.Groups, 3)
	assert.Empty(t, c.MissingPairs(), "every primary/secondary pair has a category")

	speed, ok := c.CategoryFor("cat", "fire")
	require.True(t, ok)
	assert.Equal(t, "speed", speed.Key)
	assert.Equal(t, GroupHealth, speed.Group)

	for _, it := range c.Items {
		assert.Equal(t, []string{"raw"}, it.History, it.Key)
		assert.Len(t, it.Parts, 4, it.Key)
	}

	p, ok := c.Partner("aether")
	require.True(t, ok)
	assert.Equal(t, Tag("earth"), p)
	_, ok = c.Partner("cat")
	assert.False(t, ok)
}

const tinyCatalog = `{
  "tags": {"primary": ["cat"], "secondary": ["fire", "water"], "generic": ["tasty"]},
  "pairings": {"fire": "water", "water": "fire"},
  "groups": [{"key": "health", "name": "Health"}],
  "ingredients": [
    {"key": "a", "name": "A", "parts": ["cat", "tasty", "tasty", "tasty"]},
    {"key": "b", "name": "B", "parts": ["fire", "tasty", "tasty", "tasty"]}
  ],
  "categories": [
    {"key": "speed", "name": "Speed", "group": "health", "parts": ["cat", "fire"]}
  ]
}`

func TestParseCatalogErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(string) string
	}{
		{"malformed", func(s string) string { return s[:len(s)-2] }},
		{"asymmetric pairing", func(s string) string {
			return strings.Replace(s, `"water": "fire"`, `"water": "cat"`, 1)
		}},
		{"three parts", func(s string) string {
			return strings.Replace(s, `["cat", "tasty", "tasty", "tasty"]`, `["cat", "tasty", "tasty"]`, 1)
		}},
		{"duplicate ingredient", func(s string) string {
			return strings.Replace(s, `{"key": "b"`, `{"key": "a"`, 1)
		}},
		{"unknown group", func(s string) string {
			return strings.Replace(s, `"group": "health"`, `"group": "sourcery"`, 1)
		}},
		{"category tags swapped", func(s string) string {
			return strings.Replace(s, `"parts": ["cat", "fire"]`, `"parts": ["fire", "cat"]`, 1)
		}},
		{"category with one tag", func(s string) string {
			return strings.Replace(s, `"parts": ["cat", "fire"]`, `"parts": ["cat"]`, 1)
		}},
		{"overlapping tag classes", func(s string) string {
			return strings.Replace(s, `"secondary": ["fire", "water"]`, `"secondary": ["fire", "water", "cat"]`, 1)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCatalog(tt.edit(tinyCatalog))
			assert.ErrorIs(t, err, ErrInvalidCatalog)
		})
	}
}

func TestCatalogMissingPairs(t *testing.T) {
	c, err := parseCatalog(tinyCatalog)
	require.NoError(t, err)
	assert.Equal(t, [][2]Tag{{"cat", "water"}}, c.MissingPairs())
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(tinyCatalog), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.ItemKeys())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	def, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, def.Items, 14)
}

func TestParseInventory(t *testing.T) {
	c := testCatalog(t)

	inv, err := ParseInventory(c, `{"catnip": 2, "lupine": 1}`)
	require.NoError(t, err)
	assert.Equal(t, Inventory{"catnip": 2, "lupine": 1}, inv)
	assert.Equal(t, []string{"catnip", "lupine"}, inv.Keys(c))

	tests := []struct {
		name    string
		json    string
		wantErr error
		hint    string
	}{
		{name: "typo", json: `{"catnp": 1}`, wantErr: ErrUnknownIngredient, hint: `did you mean "catnip"`},
		{name: "unknown", json: `{"unicorn": 1}`, wantErr: ErrUnknownIngredient},
		{name: "negative", json: `{"sage": -1}`, wantErr: ErrInvalidConfig},
		{name: "not a number", json: `{"sage": "two"}`, wantErr: ErrInvalidConfig},
		{name: "fractional", json: `{"catnip": 1.5}`, wantErr: ErrInvalidConfig},
		{name: "huge", json: `{"catnip": 1e300}`, wantErr: ErrInvalidConfig},
		{name: "not an object", json: `[1, 2]`, wantErr: ErrInvalidConfig},
		{name: "malformed", json: `{"sage": `, wantErr: ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInventory(c, tt.json)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.hint != "" {
				assert.Contains(t, err.Error(), tt.hint)
			} else {
				assert.NotContains(t, err.Error(), "did you mean")
			}
		})
	}
}

func TestParseRequest(t *testing.T) {
	c := testCatalog(t)

	inv, cfg, err := ParseRequest(c, `{"ingredients": {"catnip": 2, "lupine": 1.0}, "arcanePower": 4, "strategy": "exhaustive", "processes": ["cut"]}`)
	require.NoError(t, err)
	assert.Equal(t, Inventory{"catnip": 2, "lupine": 1}, inv)
	assert.Equal(t, 4, cfg.ArcanePower)
	assert.Equal(t, StrategyExhaustive, cfg.Strategy)
	assert.Equal(t, []string{"cut"}, cfg.Processes)

	_, cfg, err = ParseRequest(c, `{"ingredients": {}}`)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ArcanePower, cfg.ArcanePower)

	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"ingredients": `},
		{"no ingredients", `{"arcanePower": 3}`},
		{"arcane power too high", `{"ingredients": {}, "arcanePower": 10}`},
		{"arcane power at the cap plus one", `{"ingredients": {}, "arcanePower": 7}`},
		{"arcane power below two", `{"ingredients": {}, "arcanePower": 1}`},
		{"fractional arcane power", `{"ingredients": {}, "arcanePower": 2.5}`},
		{"arcane power as text", `{"ingredients": {}, "arcanePower": "3"}`},
		{"unknown strategy", `{"ingredients": {}, "strategy": "greedy"}`},
		{"unknown process", `{"ingredients": {}, "processes": ["boil"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseRequest(c, tt.body)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, cfg, err = ParseRequest(c, `{"ingredients": {}, "arcanePower": 6}`)
	require.NoError(t, err)
	assert.Equal(t, MaxRequestArcanePower, cfg.ArcanePower)
}

func TestSuggestKey(t *testing.T) {
	known := []string{"catnip", "lupine", "deathcap", "deadmans"}
	assert.Equal(t, "catnip", suggestKey("catnp", known))
	assert.Equal(t, "deathcap", suggestKey("deathcab", known))
	assert.Equal(t, "", suggestKey("xyz", known))
}
