// Package domain holds the configuration vocabulary model and its embedded
// defaults.
package domain

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// IsKey reports whether s is a valid category or value key.
func IsKey(s string) bool {
	return len(s) <= 50 && keyPattern.MatchString(s)
}

// Entry is one label/value pair of a category.
type Entry struct {
	Category  string
	Label     string `yaml:"label"`
	Value     string `yaml:"value"`
	SortOrder int
}

type defaultsFile struct {
	Categories map[string][]Entry `yaml:"categories"`
}

// Defaults returns the embedded vocabularies ordered by category then
// position in the file. Sort orders start at 1 within each category.
func Defaults() ([]Entry, error) {
	return parseDefaults(defaultsYAML)
}

func parseDefaults(data []byte) ([]Entry, error) {
	var file defaultsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse configuration defaults: %w", err)
	}

	categories := make([]string, 0, len(file.Categories))
	for c := range file.Categories {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var out []Entry
	for _, category := range categories {
		if !IsKey(category) {
			return nil, fmt.Errorf("configuration defaults: invalid category %q", category)
		}
		seen := make(map[string]bool)
		for i, e := range file.Categories[category] {
			if !IsKey(e.Value) || e.Label == "" {
				return nil, fmt.Errorf("configuration defaults: invalid entry %q in %s", e.Value, category)
			}
			if seen[e.Value] {
				return nil, fmt.Errorf("configuration defaults: duplicate value %q in %s", e.Value, category)
			}
			seen[e.Value] = true
			e.Category = category
			e.SortOrder = i + 1
			out = append(out, e)
		}
	}
	return out, nil
}
