package entity

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

var (
	maxSuggestions  = 2
	suggestMinRatio = 0.6
)

// Suggest returns the registered entity names closest to name, best match first.
func Suggest(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}

	type match struct {
		name  string
		ratio float64
	}
	var matches []match
	for _, n := range Names() {
		ratio := difflib.NewMatcher(strings.Split(name, ""), strings.Split(n, "")).Ratio()
		if ratio >= suggestMinRatio {
			matches = append(matches, match{name: n, ratio: ratio})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].ratio != matches[j].ratio {
			return matches[i].ratio > matches[j].ratio
		}
		return matches[i].name < matches[j].name
	})

	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	suggestions := make([]string, len(matches))
	for i, m := range matches {
		suggestions[i] = m.name
	}
	return suggestions
}
