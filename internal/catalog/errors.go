package catalog

import (
	"errors"
	"fmt"

	"github.com/iyhunko/inventory-console/internal/model"
)

var (
	// ErrMapping matches any *MappingError.
	ErrMapping = errors.New("malformed remote record")
	// ErrNotFound matches any *NotFoundError.
	ErrNotFound = errors.New("product not found")
	// ErrConflict matches any *ConflictError.
	ErrConflict = errors.New("product id already present")
)

// MappingError reports a remote record skipped during a load. Reason defaults to
// "missing field <Field>".
type MappingError struct {
	Index  int
	ID     model.ID
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (id %s): %s", e.Index, e.ID, e.reason())
	}
	return fmt.Sprintf("record %d: %s", e.Index, e.reason())
}

func (e *MappingError) reason() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "missing field " + e.Field
}

func (e *MappingError) Is(target error) bool {
	return target == ErrMapping
}

// NotFoundError reports a mutation target absent from the store.
type NotFoundError struct {
	ID model.ID
}

func (e *NotFoundError) Error() string {
	return "product not found: " + e.ID.String()
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConflictError reports an id reassignment onto an id already in the store.
type ConflictError struct {
	ID model.ID
}

func (e *ConflictError) Error() string {
	return "product id already present: " + e.ID.String()
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
