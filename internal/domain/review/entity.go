package review

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tour-booking/internal/domain/resource"
)

// Author is the public projection of the user who wrote a review.
type Author struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Photo string    `json:"photo"`
}

// Review is unique per (tour, user).
type Review struct {
	ID        uuid.UUID `json:"id"`
	Review    string    `json:"review" validate:"required"`
	Rating    float64   `json:"rating" validate:"required,gte=1,lte=5"`
	TourID    uuid.UUID `json:"tourId" validate:"required"`
	UserID    uuid.UUID `json:"-" validate:"required"`
	User      *Author   `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// RatingSummary is the aggregate of every review of one tour.
type RatingSummary struct {
	Quantity int
	Average  float64
}

type Repository interface {
	resource.Store[Review]
	Summarize(ctx context.Context, tourID uuid.UUID) (RatingSummary, error)
}
