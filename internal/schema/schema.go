// Package schema describes the stored entity kinds: their storage location,
// ordered fields, field types and roles. Every driver consumes it.
package schema

import "fmt"

// Type is the primitive type of a field.
type Type int

const (
	Text Type = iota
	Integer
	Boolean
)

func (t Type) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Role flags a field as required and/or part of the primary key.
type Role uint8

const (
	Required Role = 1 << iota
	PrimaryKey
)

// Field describes one column of a model.
type Field struct {
	Name    string
	Type    Type
	Roles   Role
	Default any

	model *Model
}

// Model returns the model owning the field.
func (f *Field) Model() *Model {
	return f.model
}

// Is reports whether the field carries the role.
func (f *Field) Is(role Role) bool {
	return f.Roles&role != 0
}

// Qualified returns the table-qualified column name, e.g. recipes.id.
func (f *Field) Qualified() string {
	return f.model.Table + "." + f.Name
}

// Alias is the collision-free column alias used for joined reads.
func (f *Field) Alias() string {
	return f.model.Table + "__" + f.Name
}

func (f *Field) String() string {
	if f.model == nil {
		return f.Name
	}
	return f.Qualified()
}

// Model describes one entity kind.
type Model struct {
	Name  string
	Table string

	fields []*Field
	byName map[string]*Field
}

func newModel(name, table string, fields ...*Field) *Model {
	m := &Model{
		Name:   name,
		Table:  table,
		fields: fields,
		byName: make(map[string]*Field, len(fields)),
	}
	for _, f := range fields {
		f.model = m
		m.byName[f.Name] = f
	}
	return m
}

// Fields returns the ordered field list.
func (m *Model) Fields() []*Field {
	out := make([]*Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Field looks a field up by column name.
func (m *Model) Field(name string) (*Field, bool) {
	f, ok := m.byName[name]
	return f, ok
}

// PrimaryKey returns the primary-key fields in declaration order.
func (m *Model) PrimaryKey() []*Field {
	var keys []*Field
	for _, f := range m.fields {
		if f.Is(PrimaryKey) {
			keys = append(keys, f)
		}
	}
	return keys
}

// Owns reports whether f is one of the model's fields.
func (m *Model) Owns(f *Field) bool {
	return f != nil && f.model == m
}

func (m *Model) String() string {
	return m.Table
}

// Models satisfies Source.
func (m *Model) Models() []*Model {
	return []*Model{m}
}

// Source is something Read can select from: a single model or a Join.
type Source interface {
	Models() []*Model
}

// Join correlates two models on LeftField == RightField (inner join).
type Join struct {
	Left       *Model
	Right      *Model
	LeftField  *Field
	RightField *Field
}

// NewJoin builds a join and checks that each field belongs to its side.
func NewJoin(left, right *Model, leftField, rightField *Field) (Join, error) {
	if !left.Owns(leftField) {
		return Join{}, fmt.Errorf("join field %s does not belong to %s", leftField, left)
	}
	if !right.Owns(rightField) {
		return Join{}, fmt.Errorf("join field %s does not belong to %s", rightField, right)
	}
	return Join{Left: left, Right: right, LeftField: leftField, RightField: rightField}, nil
}

// MustJoin is NewJoin that panics on mismatched fields.
func MustJoin(left, right *Model, leftField, rightField *Field) Join {
	j, err := NewJoin(left, right, leftField, rightField)
	if err != nil {
		panic(err)
	}
	return j
}

// Models satisfies Source.
func (j Join) Models() []*Model {
	return []*Model{j.Left, j.Right}
}

func (j Join) String() string {
	return fmt.Sprintf("%s JOIN %s ON %s = %s", j.Left, j.Right, j.LeftField, j.RightField)
}

// Fields returns every field of the source, left model first for joins.
func Fields(src Source) []*Field {
	var out []*Field
	for _, m := range src.Models() {
		out = append(out, m.fields...)
	}
	return out
}

// Contains reports whether f belongs to one of the source's models.
func Contains(src Source, f *Field) bool {
	for _, m := range src.Models() {
		if m.Owns(f) {
			return true
		}
	}
	return false
}
