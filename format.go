package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	groupStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	scoreStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	subtle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// FormatCheatsheet renders recipes one per line:
//
//	Health:  Speed Potion [1.5 / 4] Catnip (raw, crush), Lupine (raw, dry)
//
// Recipes are printed in the order given; pass them through SortForReport
// first for stable output.
func FormatCheatsheet(c *Catalog, title string, recipes []Recipe) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("--- Potions (%s) ---", title)))
	b.WriteByte('\n')
	if len(recipes) == 0 {
		b.WriteString(subtle.Render("(none)"))
		b.WriteByte('\n')
		return b.String()
	}
	for _, r := range recipes {
		names := make([]string, len(r.Items))
		for i, it := range r.Items {
			names[i] = it.String()
		}
		fmt.Fprintf(&b, "%s  %s %s %s\n",
			groupStyle.Render(c.GroupName(r.Category.Group)+":"),
			r.Category.Name,
			scoreStyle.Render(fmt.Sprintf("[%s / %d]", r.Strength, r.Effort)),
			strings.Join(names, ", "))
	}
	return b.String()
}

// FormatBreakdown explains a recipe's scores contribution by contribution.
func FormatBreakdown(r Recipe) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: strength %s, appeal %s, effort %d\n", r.Category.Name, r.Strength, r.Appeal, r.Effort)
	for _, c := range r.StrengthContributions {
		fmt.Fprintf(&b, "  strength %+.1f %s\n", c.Delta.Float(), c.Reason)
	}
	for _, c := range r.AppealContributions {
		fmt.Fprintf(&b, "  appeal   %+.1f %s\n", c.Delta.Float(), c.Reason)
	}
	return b.String()
}

func FormatVariants(items []Item) string {
	var b strings.Builder
	for _, it := range items {
		parts := make([]string, len(it.Parts))
		for i, p := range it.Parts {
			parts[i] = string(p)
		}
		fmt.Fprintf(&b, "%-40s %s\n", it.String(), subtle.Render(strings.Join(parts, " ")))
	}
	return b.String()
}

func FormatCatalog(c *Catalog) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Ingredients"))
	b.WriteByte('\n')
	for _, it := range c.Items {
		fmt.Fprintf(&b, "  %-12s %-20s %-9s %v\n", it.Key, it.Name, it.Family, it.Parts)
	}
	b.WriteString(titleStyle.Render("Categories"))
	b.WriteByte('\n')
	for _, cat := range c.Categories {
		fmt.Fprintf(&b, "  %-12s %-22s %-11s [%s %s]\n",
			cat.Key, cat.Name, c.GroupName(cat.Group), cat.Primary, cat.Secondary)
	}
	for _, pair := range c.MissingPairs() {
		fmt.Fprintf(&b, "  %s\n", subtle.Render(fmt.Sprintf("missing category for [%s %s]", pair[0], pair[1])))
	}
	return b.String()
}

// RenderReport writes the requested sections of r in the configured format.
func RenderReport(w io.Writer, c *Catalog, r *Report, cfg Config) error {
	view := *r
	if !cfg.Wants(OutputPossible) {
		view.Possible = nil
	}
	if !cfg.Wants(OutputSuggested) {
		view.Suggested = nil
	}

	switch cfg.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	}

	if cfg.Wants(OutputPossible) {
		if _, err := io.WriteString(w, FormatCheatsheet(c, "Possible", view.Possible)); err != nil {
			return err
		}
	}
	if cfg.Wants(OutputSuggested) {
		if _, err := io.WriteString(w, FormatCheatsheet(c, "Suggested", view.Suggested)); err != nil {
			return err
		}
	}
	return nil
}
