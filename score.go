package main

// Score deltas in tenths.
const (
	impurityStrength  Score = -5
	stimulantStrength Score = 5
	effectStrength    Score = 5
	impurityAppeal    Score = -1
	toxinAppeal       Score = -2
)

func collectParts(items []Item) []Tag {
	n := 0
	for _, it := range items {
		n += len(it.Parts)
	}
	parts := make([]Tag, 0, n)
	for _, it := range items {
		parts = append(parts, it.Parts...)
	}
	return parts
}

// Simulate scores one combination. ok is false when the combination does not
// carry exactly one primary and exactly one secondary tag across all its
// members; that is ordinary sparsity, not an error. A valid pair with no
// category returns a *CatalogIntegrityError.
func Simulate(c *Catalog, items []Item) (recipe Recipe, ok bool, err error) {
	parts := collectParts(items)

	var primary, secondary Tag
	primaries, secondaries := 0, 0
	for _, p := range parts {
		switch {
		case c.IsPrimary(p):
			primary = p
			primaries++
		case c.IsSecondary(p):
			secondary = p
			secondaries++
		}
	}
	if primaries != 1 || secondaries != 1 {
		return Recipe{}, false, nil
	}

	category, found := c.CategoryFor(primary, secondary)
	if !found {
		return Recipe{}, false, &CatalogIntegrityError{Primary: primary, Secondary: secondary}
	}

	var strength, appeal []Contribution
	for _, p := range parts {
		switch p {
		case TagImpurity:
			strength = append(strength, Contribution{impurityStrength, string(p)})
		case TagStimulant:
			strength = append(strength, Contribution{stimulantStrength, string(p)})
		case secondary, primary:
			strength = append(strength, Contribution{effectStrength, string(p)})
		}

		switch p {
		case TagImpurity:
			appeal = append(appeal, Contribution{impurityAppeal, "impure"})
		case TagToxin:
			appeal = append(appeal, Contribution{toxinAppeal, "toxic"})
		}
	}

	effort := 0
	for _, it := range items {
		effort += len(it.History)
	}

	members := make([]Item, len(items))
	copy(members, items)

	return Recipe{
		Category:              category,
		Items:                 members,
		Strength:              sumContributions(strength),
		Appeal:                sumContributions(appeal),
		Effort:                effort,
		StrengthContributions: strength,
		AppealContributions:   appeal,
	}, true, nil
}

func sumContributions(cs []Contribution) Score {
	var total Score
	for _, c := range cs {
		total += c.Delta
	}
	return total
}
