package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainBooking "tour-booking/internal/domain/booking"
	domainResource "tour-booking/internal/domain/resource"
	domainTour "tour-booking/internal/domain/tour"
	"tour-booking/internal/query"
	appErrors "tour-booking/pkg/errors"
)

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*domainBooking.Booking
}

func (f *fakeBookingRepo) Find(context.Context, domainResource.Scope, *query.Descriptor) ([]*domainBooking.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID, _ ...string) (*domainBooking.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (f *fakeBookingRepo) Insert(_ context.Context, b *domainBooking.Booking) error {
	b.ID = uuid.New()
	c := *b
	f.bookings[b.ID] = &c
	return nil
}

func (f *fakeBookingRepo) UpdateByID(_ context.Context, id uuid.UUID, b *domainBooking.Booking) error {
	c := *b
	f.bookings[id] = &c
	return nil
}

func (f *fakeBookingRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	delete(f.bookings, id)
	return nil
}

func (f *fakeBookingRepo) TourIDsForUser(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, b := range f.bookings {
		if b.UserID == userID {
			ids = append(ids, b.TourID)
		}
	}
	return ids, nil
}

type fakeTours struct {
	scope domainResource.Scope
	limit int
	calls int
}

func (f *fakeTours) Find(_ context.Context, scope domainResource.Scope, d *query.Descriptor) ([]*domainTour.Tour, error) {
	f.calls++
	f.scope, f.limit = scope, d.Limit
	ids := scope["id"].([]interface{})
	out := make([]*domainTour.Tour, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domainTour.Tour{ID: id.(uuid.UUID)})
	}
	return out, nil
}

type fakePublisher struct {
	events []interface{}
	err    error
}

func (f *fakePublisher) Publish(v interface{}) error {
	f.events = append(f.events, v)
	return f.err
}

func newRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uuid.UUID]*domainBooking.Booking{}}
}

func TestCreateBooking_PublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	s := NewService(newRepo(), &fakeTours{}, pub, 0)

	draft, err := (&CreateBookingRequest{Tour: uuid.New(), User: uuid.New(), Price: 497}).Build()
	require.NoError(t, err)
	assert.True(t, draft.Paid)

	created, err := s.Create(context.Background(), draft)
	require.NoError(t, err)

	require.Len(t, pub.events, 1)
	ev := pub.events[0].(domainBooking.Event)
	assert.Equal(t, domainBooking.EventCreated, ev.Type)
	assert.Equal(t, created.ID, ev.Booking.ID)
}

func TestCreateBooking_PublishFailureIsNotFatal(t *testing.T) {
	s := NewService(newRepo(), &fakeTours{}, &fakePublisher{err: errors.New("closed")}, 0)

	draft, _ := (&CreateBookingRequest{Tour: uuid.New(), User: uuid.New(), Price: 497}).Build()
	_, err := s.Create(context.Background(), draft)
	assert.NoError(t, err)
}

func TestCreateBooking_Validation(t *testing.T) {
	pub := &fakePublisher{}
	s := NewService(newRepo(), &fakeTours{}, pub, 0)

	unpaid := false
	draft, _ := (&CreateBookingRequest{Tour: uuid.New(), User: uuid.New(), Paid: &unpaid}).Build()
	assert.False(t, draft.Paid)

	_, err := s.Create(context.Background(), draft)
	assert.Equal(t, appErrors.KindValidation, appErrors.KindOf(err))
	assert.Empty(t, pub.events)
}

func TestUpdateBooking(t *testing.T) {
	repo := newRepo()
	s := NewService(repo, &fakeTours{}, nil, 0)
	ctx := context.Background()

	draft, _ := (&CreateBookingRequest{Tour: uuid.New(), User: uuid.New(), Price: 497}).Build()
	created, err := s.Create(ctx, draft)
	require.NoError(t, err)

	paid := false
	updated, err := s.Update(ctx, created.ID, &UpdateBookingRequest{Paid: &paid})
	require.NoError(t, err)
	assert.False(t, updated.Paid)
	assert.Equal(t, 497.0, updated.Price)
}

func TestMyTours(t *testing.T) {
	repo := newRepo()
	tours := &fakeTours{}
	s := NewService(repo, tours, nil, 0)
	ctx := context.Background()
	userID := uuid.New()

	got, err := s.MyTours(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, tours.calls)

	tourID := uuid.New()
	repo.bookings[uuid.New()] = &domainBooking.Booking{TourID: tourID, UserID: userID, Price: 10}
	repo.bookings[uuid.New()] = &domainBooking.Booking{TourID: uuid.New(), UserID: uuid.New(), Price: 10}

	got, err = s.MyTours(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, tourID, got[0].ID)
	assert.Equal(t, []interface{}{tourID}, tours.scope["id"])
	assert.Equal(t, 1000, tours.limit)
}
