// Package filter turns OR-of-AND filter groups and column projections into
// backend representations: a parameterized SQL predicate for the relational
// drivers and an in-memory matcher for the document driver.
package filter

import (
	"errors"
	"fmt"

	"knife/internal/schema"
)

// Mode selects how filter values are compared.
type Mode int

const (
	// Exact compares for equality. It is the zero value.
	Exact Mode = iota
	// Substring matches text fields containing the value.
	Substring
)

func (m Mode) String() string {
	if m == Substring {
		return "substring"
	}
	return "exact"
}

var (
	// ErrUnknownField is returned when a filter, projection or record names
	// a field that does not belong to the source being queried.
	ErrUnknownField = errors.New("unknown field")
	// ErrEmptyFilter is returned when a mutating call would match every row.
	ErrEmptyFilter = errors.New("refusing to modify rows without a filter")
)

// Effective drops empty groups.
func Effective(filters []schema.Filter) []schema.Filter {
	out := make([]schema.Filter, 0, len(filters))
	for _, group := range filters {
		if len(group) > 0 {
			out = append(out, group)
		}
	}
	return out
}

// Validate checks that every filtered field belongs to the source.
func Validate(src schema.Source, filters []schema.Filter) error {
	for _, group := range filters {
		for f := range group {
			if !schema.Contains(src, f) {
				return fmt.Errorf("%w: %s in %v", ErrUnknownField, f, src)
			}
		}
	}
	return nil
}

// Projection resolves the requested columns. No columns means every field of
// the source, which for a join is the union of both models.
func Projection(src schema.Source, columns []*schema.Field) ([]*schema.Field, error) {
	if len(columns) == 0 {
		return schema.Fields(src), nil
	}
	out := make([]*schema.Field, 0, len(columns))
	seen := make(map[*schema.Field]bool, len(columns))
	for _, f := range columns {
		if !schema.Contains(src, f) {
			return nil, fmt.Errorf("%w: column %s in %v", ErrUnknownField, f, src)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// CheckRecord verifies that a record written to m only carries m's fields.
func CheckRecord(m *schema.Model, rec schema.Record) error {
	for f := range rec {
		if !m.Owns(f) {
			return fmt.Errorf("%w: %s in %s", ErrUnknownField, f, m)
		}
	}
	return nil
}
