// Package store is the entity service: it validates input, enforces
// uniqueness and referential integrity, keeps the dependency graph acyclic
// and cascades deletes. It is the only caller of driver.Driver outside the
// driver packages.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"knife/internal/driver"
	"knife/internal/schema"
)

// Params carries caller input keyed by field name. Values may be typed or
// textual; they are coerced to the field type.
type Params map[string]any

// Store serializes every check-then-act sequence per entity kind so that a
// uniqueness or reachability check and the write it guards cannot interleave
// with another caller's.
type Store struct {
	driver   driver.Driver
	validate *validator.Validate
	locks    map[*schema.Model]*sync.Mutex
}

func New(d driver.Driver) *Store {
	locks := make(map[*schema.Model]*sync.Mutex, len(schema.Models))
	for _, m := range schema.Models {
		locks[m] = &sync.Mutex{}
	}
	return &Store{
		driver:   d,
		validate: validator.New(),
		locks:    locks,
	}
}

// Driver returns the backend the store writes to.
func (s *Store) Driver() driver.Driver {
	return s.driver
}

// lock acquires the mutexes of the given kinds in schema.Models order and
// returns the matching unlock.
func (s *Store) lock(kinds ...*schema.Model) func() {
	var held []*sync.Mutex
	for _, m := range schema.Models {
		for _, want := range kinds {
			if m == want {
				mu := s.locks[m]
				mu.Lock()
				held = append(held, mu)
				break
			}
		}
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

var (
	recipes      = schema.Recipes
	ingredients  = schema.Ingredients
	labels       = schema.Labels
	requirements = schema.Requirements
	tags         = schema.Tags
	dependencies = schema.Dependencies
)

// rules are validator tags applied to decoded values.
var rules = map[*schema.Field]string{
	recipes.Name:              "required,max=256",
	recipes.Author:            "max=256",
	ingredients.Name:          "required,max=256",
	labels.Name:               "required,max=64",
	requirements.IngredientID: "required",
	requirements.Quantity:     "max=128",
	requirements.Group:        "max=64",
	dependencies.Requisite:    "required",
	dependencies.Quantity:     "max=128",
}

// decode turns params into a record of m, accepting only the allowed fields.
func (s *Store) decode(m *schema.Model, p Params, allowed ...*schema.Field) (schema.Record, error) {
	return s.parse(m, p, true, allowed)
}

// decodeLookup is decode without the value rules, so an empty name matches
// everything instead of failing.
func (s *Store) decodeLookup(m *schema.Model, p Params, allowed ...*schema.Field) (schema.Record, error) {
	return s.parse(m, p, false, allowed)
}

func (s *Store) parse(m *schema.Model, p Params, check bool, allowed []*schema.Field) (schema.Record, error) {
	rec := make(schema.Record, len(p))
	for _, key := range sortedKeys(p) {
		raw := p[key]
		f := pick(allowed, key)
		if f == nil {
			return nil, invalidQuery(m.Name, key)
		}
		if raw == nil {
			return nil, invalidValue(m.Name, key, raw, nil)
		}
		v, err := f.Coerce(raw)
		if err != nil {
			return nil, invalidValue(m.Name, key, raw, err)
		}
		if text, ok := v.(string); ok {
			text = strings.TrimRightFunc(text, unicode.IsSpace)
			if f.Name == "name" {
				text = strings.TrimSpace(text)
			}
			v = text
		}
		if rule, ok := rules[f]; ok && check {
			if err := s.validate.Var(v, rule); err != nil {
				return nil, invalidValue(m.Name, key, raw, err)
			}
		}
		rec[f] = v
	}
	return rec, nil
}

func pick(fields []*schema.Field, name string) *schema.Field {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func sortedKeys(p Params) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// first returns the first row matching where, or nil.
func (s *Store) first(ctx context.Context, src schema.Source, where schema.Filter) (schema.Record, error) {
	rows, err := s.driver.Read(ctx, src, driver.Where(where))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (s *Store) count(ctx context.Context, m *schema.Model, filters ...schema.Filter) (int, error) {
	rows, err := s.driver.Read(ctx, m, driver.Query{Filters: filters, Columns: m.PrimaryKey()})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// lookupFilter builds a substring lookup. name is matched against
// simple_name; an id has to match exactly and is returned apart.
func lookupFilter(rec schema.Record, id, name, simpleName *schema.Field) (schema.Filter, string) {
	where := schema.Filter{}
	var wantID string
	for f, v := range rec {
		switch f {
		case id:
			wantID, _ = v.(string)
		case name:
			where[simpleName] = schema.Simplify(v.(string))
		default:
			where[f] = v
		}
	}
	return where, wantID
}
