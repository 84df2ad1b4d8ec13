package schema

import (
	"fmt"
	"strings"
)

// Dialect maps field metadata onto one SQL engine's column definitions.
type Dialect struct {
	Name  string
	Types map[Type]string
	True  string
	False string
}

var (
	SQLite = Dialect{
		Name:  "sqlite",
		Types: map[Type]string{Text: "TEXT", Integer: "INTEGER", Boolean: "BOOLEAN"},
		True:  "1",
		False: "0",
	}
	Postgres = Dialect{
		Name:  "postgres",
		Types: map[Type]string{Text: "TEXT", Integer: "BIGINT", Boolean: "BOOLEAN"},
		True:  "TRUE",
		False: "FALSE",
	}
)

// Quote double-quotes an identifier. Both engines accept the ANSI form.
func Quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

// Literal renders a default value as SQL text.
func (d Dialect) Literal(v any) (string, error) {
	switch value := v.(type) {
	case bool:
		if value {
			return d.True, nil
		}
		return d.False, nil
	case string:
		return "'" + strings.ReplaceAll(value, "'", "''") + "'", nil
	case int, int32, int64:
		return fmt.Sprintf("%d", value), nil
	default:
		return "", fmt.Errorf("unsupported default literal %T", v)
	}
}

// DDL renders the CREATE TABLE statement for the model. The output depends
// only on the field metadata and the dialect.
func (m *Model) DDL(d Dialect) (string, error) {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(Quote(m.Table))
	b.WriteString(" (\n")

	for _, f := range m.fields {
		columnType, ok := d.Types[f.Type]
		if !ok {
			return "", fmt.Errorf("%s: no %s column type for %s", f, d.Name, f.Type)
		}
		b.WriteString("    ")
		b.WriteString(Quote(f.Name))
		b.WriteString(" ")
		b.WriteString(columnType)
		if f.Is(Required) || f.Is(PrimaryKey) {
			b.WriteString(" NOT NULL")
		}
		if f.Default != nil {
			literal, err := d.Literal(f.Default)
			if err != nil {
				return "", fmt.Errorf("%s: %w", f, err)
			}
			b.WriteString(" DEFAULT ")
			b.WriteString(literal)
		}
		b.WriteString(",\n")
	}

	keys := m.PrimaryKey()
	quoted := make([]string, 0, len(keys))
	for _, k := range keys {
		quoted = append(quoted, Quote(k.Name))
	}
	b.WriteString("    PRIMARY KEY (")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString("))")

	return b.String(), nil
}
