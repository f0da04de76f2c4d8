package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-console/internal/model"
)

var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidType is returned when a repository receives a resource of the wrong type.
	ErrInvalidType = errors.New("invalid resource type")
)

// Repository defines the interface for a generic repository that can manage resources.
type Repository interface {
	Create(ctx context.Context, resource Resource) (result Resource, err error)
	List(ctx context.Context, query Query) (result []Resource, err error)
	DeleteByID(ctx context.Context, resource Resource) error
	FindByID(ctx context.Context, id uuid.UUID) (result Resource, err error)
}

// EventStatusUpdater moves journal events through the outbox states.
type EventStatusUpdater interface {
	UpdateStatus(ctx context.Context, eventID uuid.UUID, status model.EventStatus) error
}

// EventRepository is the journal: a Repository of events whose status can be updated.
type EventRepository interface {
	Repository
	EventStatusUpdater
}

// Resource represents a generic resource that can be managed by the repository.
type Resource interface {
	InitMeta()
}
