package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	c := testCatalog(t)
	catnip := mustItem(t, c, "catnip")

	variants := Split(catnip)
	require.Len(t, variants, 4)

	want := []struct {
		step  string
		parts []Tag
	}{
		{"crush", []Tag{"impurity", "cat"}},
		{"blanch", []Tag{"stimulant", "impurity"}},
		{"dry", []Tag{"stimulant", "tasty"}},
		{"pickled", []Tag{"cat", "tasty"}},
	}
	for i, w := range want {
		assert.Equal(t, w.parts, variants[i].Parts, w.step)
		assert.Equal(t, []string{"raw", w.step}, variants[i].History)
		assert.Equal(t, "catnip", variants[i].Key)
	}
}

func TestSplitCoversEachPartTwice(t *testing.T) {
	c := testCatalog(t)
	for _, it := range c.Items {
		t.Run(it.Key, func(t *testing.T) {
			variants := Split(it)
			require.Len(t, variants, 4)
			seen := make([]int, 4)
			for _, v := range variants {
				require.Len(t, v.Parts, 2)
				for _, cut := range splitCuts {
					if v.History[len(v.History)-1] == cut.step {
						seen[cut.a]++
						seen[cut.b]++
					}
				}
			}
			assert.Equal(t, []int{2, 2, 2, 2}, seen)
		})
	}
}

func TestSplitNeedsFourParts(t *testing.T) {
	half := Item{Key: "x", History: []string{"raw", "crush"}, Parts: []Tag{"cat", "fire"}}
	assert.Empty(t, Split(half))
}

func TestPurify(t *testing.T) {
	c := testCatalog(t)

	_, ok := Purify(mustItem(t, c, "lupine"))
	assert.False(t, ok, "lupine has no impurity")

	catnip := mustItem(t, c, "catnip")
	v, ok := Purify(catnip)
	require.True(t, ok)
	assert.Equal(t, []Tag{"stimulant", "stimulant", "cat", "tasty"}, v.Parts)
	assert.Equal(t, []string{"raw", "ferment"}, v.History)
	assert.Len(t, v.Parts, len(catnip.Parts))
	assert.Equal(t, []Tag{"stimulant", "impurity", "cat", "tasty"}, catnip.Parts, "original untouched")
}

func TestConvert(t *testing.T) {
	c := testCatalog(t)

	_, ok := Convert(c, mustItem(t, c, "catnip"))
	assert.False(t, ok, "catnip has nothing to pair")

	v, ok := Convert(c, mustItem(t, c, "nightshade"))
	require.True(t, ok)
	assert.Equal(t, []Tag{"toxin", "earth", "stimulant", "fire"}, v.Parts)
	assert.Equal(t, []string{"raw", "infuse"}, v.History)
}

func TestExpand(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		name   string
		key    string
		stages []Stage
		want   int
	}{
		{name: "no stages", key: "catnip", stages: nil, want: 1},
		{name: "split only", key: "catnip", stages: []Stage{StageSplit}, want: 5},
		// original + 4 halves + ferment of original, crush and blanch
		{name: "catnip all", key: "catnip", stages: []Stage{StageSplit, StagePurify, StageConvert}, want: 8},
		// original + 4 halves + infuse of original, crush and pickled
		{name: "lupine all", key: "lupine", stages: []Stage{StageSplit, StagePurify, StageConvert}, want: 8},
		{name: "purify without split", key: "catnip", stages: []Stage{StagePurify}, want: 2},
		{name: "convert inapplicable", key: "catnip", stages: []Stage{StageConvert}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := mustItem(t, c, tt.key)
			got := Expand(c, it, tt.stages)
			assert.Len(t, got, tt.want)
			assert.Equal(t, it, got[0], "original comes first")
			for _, v := range got {
				assert.Equal(t, tt.key, v.Key)
			}
		})
	}
}

func TestExpandStageOrderIsFixed(t *testing.T) {
	c := testCatalog(t)
	sage := mustItem(t, c, "sage")

	a := Expand(c, sage, []Stage{StageSplit, StagePurify, StageConvert})
	b := Expand(c, sage, []Stage{StageConvert, StagePurify, StageSplit})
	assert.Equal(t, a, b)
}

func TestExpandPurifyThenConvert(t *testing.T) {
	c := testCatalog(t)
	// sage [water tasty impurity sweet]: ferment then infuse yields fire+stimulant.
	variants := Expand(c, mustItem(t, c, "sage"), []Stage{StagePurify, StageConvert})
	require.Len(t, variants, 4)
	last := variants[3]
	assert.Equal(t, []string{"raw", "ferment", "infuse"}, last.History)
	assert.Equal(t, []Tag{"fire", "tasty", "stimulant", "sweet"}, last.Parts)
}

func TestParseStages(t *testing.T) {
	got, err := ParseStages([]string{"cut", "Ferment", "infuse", "split"})
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageSplit, StagePurify, StageConvert}, got)

	_, err = ParseStages([]string{"boil"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestExpandAll(t *testing.T) {
	c := testCatalog(t)
	items := []Item{mustItem(t, c, "catnip"), mustItem(t, c, "lupine")}
	got := ExpandAll(c, items, []Stage{StageSplit})
	require.Len(t, got, 10)
	assert.Equal(t, "catnip", got[0].Key)
	assert.Equal(t, "lupine", got[5].Key)
}
