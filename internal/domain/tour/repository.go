package tour

import (
	"context"

	"github.com/google/uuid"

	"tour-booking/internal/domain/resource"
)

// Repository adds tour analytics and guide assignment to the generic store.
type Repository interface {
	resource.Store[Tour]
	GetBySlug(ctx context.Context, slug string) (*Tour, error)
	SetGuides(ctx context.Context, tourID uuid.UUID, guideIDs []uuid.UUID) error
	UpdateRatings(ctx context.Context, tourID uuid.UUID, quantity int, average float64) error
	Stats(ctx context.Context, minRating float64) ([]Stats, error)
	MonthlyPlan(ctx context.Context, year int) ([]MonthPlan, error)
	Within(ctx context.Context, center Point, radius float64, unit Unit) ([]*Tour, error)
	Distances(ctx context.Context, from Point, unit Unit) ([]Distance, error)
}
