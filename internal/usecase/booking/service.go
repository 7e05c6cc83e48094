package booking

import (
	"context"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainBooking "tour-booking/internal/domain/booking"
	domainResource "tour-booking/internal/domain/resource"
	domainTour "tour-booking/internal/domain/tour"
	"tour-booking/internal/logger"
	"tour-booking/internal/query"
	"tour-booking/internal/usecase/resource"
)

// Publisher fans booking events out to live subscribers.
type Publisher interface {
	Publish(v interface{}) error
}

// TourFinder lists tours under a fixed scope.
type TourFinder interface {
	Find(ctx context.Context, scope domainResource.Scope, d *query.Descriptor) ([]*domainTour.Tour, error)
}

type Service struct {
	*resource.Service[domainBooking.Booking]
	bookingRepo domainBooking.Repository
	tours       TourFinder
	publisher   Publisher
}

func NewService(bookingRepo domainBooking.Repository, tours TourFinder, publisher Publisher, maxLimit int) *Service {
	s := &Service{
		bookingRepo: bookingRepo,
		tours:       tours,
		publisher:   publisher,
	}
	s.Service = resource.NewService[domainBooking.Booking]("booking", bookingRepo,
		func(b *domainBooking.Booking) uuid.UUID { return b.ID },
		resource.WithMaxLimit[domainBooking.Booking](maxLimit),
		resource.WithHooks(resource.Hooks[domainBooking.Booking]{
			Created: s.announce,
		}),
	)
	return s
}

func (s *Service) announce(_ context.Context, b *domainBooking.Booking) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(domainBooking.Event{Type: domainBooking.EventCreated, Booking: b}); err != nil {
		logger.Warn("Failed to publish booking event",
			zap.Error(err),
			zap.String("booking_id", b.ID.String()),
		)
	}
}

// MyTours returns the tours the user has booked.
func (s *Service) MyTours(ctx context.Context, userID uuid.UUID) ([]*domainTour.Tour, error) {
	ids, err := s.bookingRepo.TourIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domainTour.Tour{}, nil
	}

	in := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		in = append(in, id)
	}

	d, err := query.Parse(url.Values{"limit": {"1000"}})
	if err != nil {
		return nil, err
	}
	return s.tours.Find(ctx, domainResource.Scope{"id": in}, d)
}

// CreateBookingRequest is the body of POST /bookings. Nested routes fill
// Tour from the path and User from the session when the body omits them.
type CreateBookingRequest struct {
	Tour  uuid.UUID `json:"tour"`
	User  uuid.UUID `json:"user"`
	Price float64   `json:"price"`
	Paid  *bool     `json:"paid"`
}

func (r *CreateBookingRequest) Build() (*domainBooking.Booking, error) {
	paid := true
	if r.Paid != nil {
		paid = *r.Paid
	}
	return &domainBooking.Booking{
		TourID: r.Tour,
		UserID: r.User,
		Price:  r.Price,
		Paid:   paid,
	}, nil
}

type UpdateBookingRequest struct {
	Price *float64 `json:"price"`
	Paid  *bool    `json:"paid"`
}

func (r *UpdateBookingRequest) Apply(b *domainBooking.Booking) error {
	if r.Price != nil {
		b.Price = *r.Price
	}
	if r.Paid != nil {
		b.Paid = *r.Paid
	}
	return nil
}
