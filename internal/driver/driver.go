// Package driver defines the persistence contract every storage backend
// implements, plus the registry used to pick a backend at startup.
package driver

import (
	"context"
	"errors"
	"fmt"

	"knife/internal/filter"
	"knife/internal/schema"
)

// Driver reads, writes and erases records of the models in schema.Models.
//
// Filters are OR'd groups of AND'd field constraints. An empty filter list
// on Read selects every row; Erase refuses it with filter.ErrEmptyFilter.
type Driver interface {
	// Read selects from a model or a join. Records are keyed by field, so
	// same-named columns of a join stay apart.
	Read(ctx context.Context, src schema.Source, q Query) ([]schema.Record, error)
	// Write inserts rec when no filter is given, filling missing fields with
	// their defaults. With filters it updates every matching row.
	Write(ctx context.Context, m *schema.Model, rec schema.Record, filters ...schema.Filter) error
	// Erase deletes the rows matching filters.
	Erase(ctx context.Context, m *schema.Model, filters ...schema.Filter) error
}

// Query narrows a Read.
type Query struct {
	Filters []schema.Filter
	Columns []*schema.Field
	Mode    filter.Mode
}

// Where is shorthand for a Query with exact-match filters.
func Where(filters ...schema.Filter) Query {
	return Query{Filters: filters}
}

var (
	// ErrUnknownBackend is returned by Open for an unregistered kind.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrEmptyRecord is returned by an update that assigns nothing.
	ErrEmptyRecord = errors.New("record has no fields to write")
)

// Error reports a failed backend operation.
type Error struct {
	Op      string
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err wrapped in an *Error, or nil. Errors from the filter
// package pass through unchanged so callers can tell bad queries from
// backend failures.
func Wrap(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, filter.ErrUnknownField) || errors.Is(err, filter.ErrEmptyFilter) {
		return err
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Op: op, Backend: backend, Err: err}
}

// Prepare validates a write and returns the record to insert with every
// missing field set to its default. Fields without a default are left out.
func Prepare(m *schema.Model, rec schema.Record) (schema.Record, error) {
	if err := filter.CheckRecord(m, rec); err != nil {
		return nil, err
	}
	out := make(schema.Record, len(m.Fields()))
	for _, f := range m.Fields() {
		v, ok := rec[f]
		if !ok {
			if f.Default == nil {
				continue
			}
			v = f.Default
		}
		coerced, err := f.Coerce(v)
		if err != nil {
			return nil, err
		}
		out[f] = coerced
	}
	return out, nil
}
