package schema

import (
	"fmt"

	"github.com/spf13/cast"
)

// Record is one row. Keys are field descriptors rather than column names so
// that joined rows keep same-named columns of both models apart.
type Record map[*Field]any

// Filter is a conjunction of field = value constraints. A slice of filters
// is a disjunction of those groups.
type Filter map[*Field]any

// String returns the text value of f, or "" when absent.
func (r Record) String(f *Field) string {
	s, _ := r[f].(string)
	return s
}

// Bool returns the boolean value of f, or false when absent.
func (r Record) Bool(f *Field) bool {
	b, _ := r[f].(bool)
	return b
}

// Named flattens the record to column name keys. Fields of a second model
// sharing a column name are keyed by their qualified name instead.
func (r Record) Named() map[string]any {
	out := make(map[string]any, len(r))
	for f, v := range r {
		if _, taken := out[f.Name]; taken {
			out[f.Qualified()] = v
			continue
		}
		out[f.Name] = v
	}
	return out
}

// Project keeps only the given fields.
func (r Record) Project(fields []*Field) Record {
	out := make(Record, len(fields))
	for _, f := range fields {
		if v, ok := r[f]; ok {
			out[f] = v
		}
	}
	return out
}

// Coerce converts a backend value into the Go type of the field: string,
// int64 or bool. Nil passes through.
func (f *Field) Coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Type {
	case Text:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		return s, nil
	case Integer:
		n, err := cast.ToInt64E(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		return n, nil
	case Boolean:
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		b, err := cast.ToBoolE(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%s: unknown type %s", f, f.Type)
	}
}
