package filter

import (
	"fmt"
	"sort"
	"strings"

	"knife/internal/schema"
)

// Predicate is a WHERE clause body with named placeholders (@name) and the
// values bound to them.
type Predicate struct {
	Clause string
	Params map[string]any
}

// Empty reports whether the predicate constrains nothing.
func (p Predicate) Empty() bool {
	return p.Clause == ""
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SQL builds the predicate for filters. Groups are OR'd, fields inside a
// group AND'd. Substring matches ignore case on every engine. Placeholder
// names carry the group index so the same field can appear in several
// groups. Values are only ever bound, never inlined.
func SQL(filters []schema.Filter, mode Mode) (Predicate, error) {
	groups := Effective(filters)
	if len(groups) == 0 {
		return Predicate{}, nil
	}

	params := make(map[string]any)
	rules := make([]string, 0, len(groups))

	for index, group := range groups {
		terms := make([]string, 0, len(group))
		for _, f := range sortedFields(group) {
			column := schema.Quote(f.Model().Table) + "." + schema.Quote(f.Name)
			placeholder := fmt.Sprintf("%s_%d", f.Alias(), index)
			value := group[f]

			switch {
			case value == nil:
				terms = append(terms, column+" IS NULL")
				continue
			case mode == Substring && f.Type == schema.Text:
				text, ok := value.(string)
				if !ok {
					return Predicate{}, fmt.Errorf("%s: substring match needs text, got %T", f, value)
				}
				params[placeholder] = "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
				terms = append(terms, fmt.Sprintf(`LOWER(%s) LIKE @%s ESCAPE '\'`, column, placeholder))
			default:
				coerced, err := f.Coerce(value)
				if err != nil {
					return Predicate{}, err
				}
				params[placeholder] = coerced
				terms = append(terms, fmt.Sprintf("%s = @%s", column, placeholder))
			}
		}
		rules = append(rules, "("+strings.Join(terms, " AND ")+")")
	}

	return Predicate{Clause: strings.Join(rules, " OR "), Params: params}, nil
}

// sortedFields orders a group's fields by alias so the generated clause is
// stable across map iteration.
func sortedFields(group schema.Filter) []*schema.Field {
	fields := make([]*schema.Field, 0, len(group))
	for f := range group {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Alias() < fields[j].Alias()
	})
	return fields
}
