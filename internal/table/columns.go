package table

import (
	"github.com/bmatcuk/doublestar/v4"

	"featurestore/internal/errors"
)

// MatchColumns returns the columns matching any of the glob patterns, in
// column order.
func MatchColumns(columns, patterns []string) ([]string, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Newf(errors.ErrConfiguration, "invalid column pattern %q", p)
		}
	}

	var matched []string
	for _, c := range columns {
		for _, p := range patterns {
			if ok, _ := doublestar.Match(p, c); ok {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched, nil
}
