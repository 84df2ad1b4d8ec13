package filter

import (
	"reflect"
	"strings"

	"knife/internal/schema"
)

// Matcher evaluates filters against an in-memory row.
type Matcher func(schema.Record) bool

// Compile returns the in-memory rendition of SQL(filters, mode). A filter
// list with no effective group matches everything.
func Compile(filters []schema.Filter, mode Mode) Matcher {
	groups := Effective(filters)
	if len(groups) == 0 {
		return func(schema.Record) bool { return true }
	}

	return func(row schema.Record) bool {
		for _, group := range groups {
			if matchGroup(group, row, mode) {
				return true
			}
		}
		return false
	}
}

func matchGroup(group schema.Filter, row schema.Record, mode Mode) bool {
	for f, want := range group {
		got, present := row[f]
		if !present || got == nil {
			if want != nil {
				return false
			}
			continue
		}
		if want == nil {
			return false
		}

		if mode == Substring && f.Type == schema.Text {
			text, ok := got.(string)
			needle, okNeedle := want.(string)
			if !ok || !okNeedle || !strings.Contains(strings.ToLower(text), strings.ToLower(needle)) {
				return false
			}
			continue
		}

		coerced, err := f.Coerce(want)
		if err != nil || !reflect.DeepEqual(coerced, got) {
			return false
		}
	}
	return true
}
