package config

import (
	"slices"
	"strings"

	"github.com/theirongolddev/cbudget/internal/model"
)

// Categories returns the built-in categories followed by any user-defined
// ones from the config, deduplicated case-insensitively. "Other" stays last.
func Categories(cfg Config) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(c string) {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, c)
	}

	for _, c := range model.DefaultCategories {
		if c != model.OtherCategory {
			add(c)
		}
	}
	for _, c := range cfg.General.Categories {
		add(c)
	}
	add(model.OtherCategory)
	return out
}

// KnownCategory reports whether c is one of Categories(cfg), ignoring case.
func KnownCategory(cfg Config, c string) bool {
	return slices.ContainsFunc(Categories(cfg), func(k string) bool {
		return strings.EqualFold(k, c)
	})
}
