package store

import (
	"errors"
	"fmt"

	"knife/internal/driver"
	"knife/internal/filter"
)

// Kind classifies a Store failure.
type Kind int

const (
	NotFound Kind = iota + 1
	AlreadyExists
	InUse
	InvalidQuery
	InvalidValue
	CycleDetected
	BackendFailure
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case AlreadyExists:
		return "already exists"
	case InUse:
		return "in use"
	case InvalidQuery:
		return "invalid query"
	case InvalidValue:
		return "invalid value"
	case CycleDetected:
		return "cycle detected"
	case BackendFailure:
		return "backend failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the structured failure returned by every Store method. Data holds
// context for the caller, e.g. the conflicting record or a usage count.
type Error struct {
	Kind   Kind
	Entity string
	ID     string
	Field  string
	Value  any
	Data   any
	Err    error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound       = &Error{Kind: NotFound}
	ErrAlreadyExists  = &Error{Kind: AlreadyExists}
	ErrInUse          = &Error{Kind: InUse}
	ErrInvalidQuery   = &Error{Kind: InvalidQuery}
	ErrInvalidValue   = &Error{Kind: InvalidValue}
	ErrCycleDetected  = &Error{Kind: CycleDetected}
	ErrBackendFailure = &Error{Kind: BackendFailure}
)

func (e *Error) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
	case AlreadyExists:
		return fmt.Sprintf("%s already exists", e.Entity)
	case InUse:
		return fmt.Sprintf("%s in use: %s", e.Entity, e.ID)
	case InvalidQuery:
		switch {
		case e.Field != "":
			return fmt.Sprintf("invalid parameter: %s", e.Field)
		case e.Err != nil:
			return fmt.Sprintf("invalid query: %v", e.Err)
		default:
			return "expected parameters"
		}
	case InvalidValue:
		return fmt.Sprintf("invalid field %s (%v)", e.Field, e.Value)
	case CycleDetected:
		return fmt.Sprintf("dependency would create a cycle: %s", e.ID)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind, and on entity when the target names one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Entity == "" || t.Entity == e.Entity)
}

// KindOf returns the kind of err, BackendFailure for foreign errors and 0
// for nil.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return BackendFailure
}

func notFound(entity, id string) error {
	return &Error{Kind: NotFound, Entity: entity, ID: id}
}

func alreadyExists(entity string, data any) error {
	return &Error{Kind: AlreadyExists, Entity: entity, Data: data}
}

func inUse(entity, id string, count int) error {
	return &Error{Kind: InUse, Entity: entity, ID: id, Data: map[string]int{"use_count": count}}
}

func invalidQuery(entity, field string) error {
	return &Error{Kind: InvalidQuery, Entity: entity, Field: field}
}

func invalidValue(entity, field string, value any, err error) error {
	return &Error{Kind: InvalidValue, Entity: entity, Field: field, Value: value, Err: err}
}

func cycle(from, to string) error {
	return &Error{Kind: CycleDetected, Entity: "dependency", ID: from + " -> " + to}
}

// translate maps driver failures onto the taxonomy.
func translate(entity string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, filter.ErrUnknownField) || errors.Is(err, filter.ErrEmptyFilter) || errors.Is(err, driver.ErrEmptyRecord) {
		return &Error{Kind: InvalidQuery, Entity: entity, Err: err}
	}
	return &Error{Kind: BackendFailure, Entity: entity, Err: err}
}
