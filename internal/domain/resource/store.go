package resource

import (
	"context"

	"github.com/google/uuid"

	"tour-booking/internal/query"
)

// Scope pins API fields to fixed values on top of the request filter,
// e.g. Scope{"tourId": id} for reviews nested under a tour.
type Scope map[string]any

// Store is the persistence contract the generic resource service runs on.
// Missing records are reported as pkg/errors.ErrNotFound.
type Store[T any] interface {
	Find(ctx context.Context, scope Scope, d *query.Descriptor) ([]*T, error)
	FindByID(ctx context.Context, id uuid.UUID, populate ...string) (*T, error)
	Insert(ctx context.Context, entity *T) error
	UpdateByID(ctx context.Context, id uuid.UUID, entity *T) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Transactor runs fn so that every store call made with the context fn
// receives commits or rolls back together.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
