package parser

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Stdin is the input name that selects standard input.
const Stdin = "-"

// ExpandGlobs expands a list of file paths and glob patterns into a
// deduplicated list of inputs. Inputs keep the order of the patterns that
// produced them; the matches of a single pattern are sorted. Patterns that
// match nothing are kept as literal paths so opening them reports the error,
// and Stdin is passed through untouched.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}

	for _, pattern := range patterns {
		if pattern == Stdin {
			add(pattern)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			add(pattern)
			continue
		}

		sort.Strings(matches)
		for _, match := range matches {
			add(match)
		}
	}

	return result, nil
}
