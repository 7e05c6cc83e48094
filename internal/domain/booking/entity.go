package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tour-booking/internal/domain/resource"
)

type TourSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	ImageCover string    `json:"imageCover"`
}

type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type Booking struct {
	ID        uuid.UUID    `json:"id"`
	TourID    uuid.UUID    `json:"tourId" validate:"required"`
	UserID    uuid.UUID    `json:"userId" validate:"required"`
	Price     float64      `json:"price" validate:"required,gt=0"`
	Paid      bool         `json:"paid"`
	Tour      *TourSummary `json:"tour,omitempty"`
	User      *UserSummary `json:"user,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

type Repository interface {
	resource.Store[Booking]
	TourIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Event is broadcast to live feed subscribers when a booking changes.
type Event struct {
	Type    string   `json:"type"`
	Booking *Booking `json:"booking"`
}

const EventCreated = "booking.created"
