package review

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainResource "tour-booking/internal/domain/resource"
	domainReview "tour-booking/internal/domain/review"
	"tour-booking/internal/query"
	appErrors "tour-booking/pkg/errors"
)

type fakeReviewRepo struct {
	reviews map[uuid.UUID]*domainReview.Review
}

func (f *fakeReviewRepo) Find(_ context.Context, scope domainResource.Scope, _ *query.Descriptor) ([]*domainReview.Review, error) {
	var out []*domainReview.Review
	for _, rv := range f.reviews {
		if id, ok := scope["tourId"]; ok && id != rv.TourID {
			continue
		}
		c := *rv
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeReviewRepo) FindByID(_ context.Context, id uuid.UUID, _ ...string) (*domainReview.Review, error) {
	rv, ok := f.reviews[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	c := *rv
	return &c, nil
}

func (f *fakeReviewRepo) Insert(_ context.Context, rv *domainReview.Review) error {
	for _, existing := range f.reviews {
		if existing.TourID == rv.TourID && existing.UserID == rv.UserID {
			return appErrors.Duplicate("", nil)
		}
	}
	rv.ID = uuid.New()
	c := *rv
	f.reviews[rv.ID] = &c
	return nil
}

func (f *fakeReviewRepo) UpdateByID(_ context.Context, id uuid.UUID, rv *domainReview.Review) error {
	c := *rv
	f.reviews[id] = &c
	return nil
}

func (f *fakeReviewRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	if _, ok := f.reviews[id]; !ok {
		return appErrors.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) Summarize(_ context.Context, tourID uuid.UUID) (domainReview.RatingSummary, error) {
	var sum domainReview.RatingSummary
	var total float64
	for _, rv := range f.reviews {
		if rv.TourID == tourID {
			sum.Quantity++
			total += rv.Rating
		}
	}
	if sum.Quantity > 0 {
		sum.Average = total / float64(sum.Quantity)
	}
	return sum, nil
}

type ratingsCall struct {
	quantity int
	average  float64
}

type fakeRatings struct {
	calls map[uuid.UUID][]ratingsCall
}

func (f *fakeRatings) UpdateRatings(_ context.Context, tourID uuid.UUID, quantity int, average float64) error {
	f.calls[tourID] = append(f.calls[tourID], ratingsCall{quantity, average})
	return nil
}

func TestReviewWritesRecomputeRatings(t *testing.T) {
	repo := &fakeReviewRepo{reviews: map[uuid.UUID]*domainReview.Review{}}
	ratings := &fakeRatings{calls: map[uuid.UUID][]ratingsCall{}}
	s := NewService(repo, ratings, 0)
	ctx := context.Background()
	tourID := uuid.New()

	first, err := (&CreateReviewRequest{Review: "Amazing!", Rating: 5, Tour: tourID, User: uuid.New()}).Build()
	require.NoError(t, err)
	_, err = s.Create(ctx, first)
	require.NoError(t, err)

	second, _ := (&CreateReviewRequest{Review: "Decent", Rating: 4, Tour: tourID, User: uuid.New()}).Build()
	third, _ := (&CreateReviewRequest{Review: "Good", Rating: 4, Tour: tourID, User: uuid.New()}).Build()
	_, err = s.Create(ctx, second)
	require.NoError(t, err)
	created, err := s.Create(ctx, third)
	require.NoError(t, err)

	// (5+4+4)/3 = 4.333 -> 4.3
	assert.Equal(t, ratingsCall{3, 4.3}, ratings.calls[tourID][2])

	rating := 5.0
	_, err = s.Update(ctx, created.ID, &UpdateReviewRequest{Rating: &rating})
	require.NoError(t, err)
	// (5+4+5)/3 = 4.666 -> 4.7
	assert.Equal(t, ratingsCall{3, 4.7}, ratings.calls[tourID][3])

	for id := range repo.reviews {
		require.NoError(t, s.Delete(ctx, id))
	}
	calls := ratings.calls[tourID]
	assert.Equal(t, ratingsCall{0, 4.5}, calls[len(calls)-1])
}

func TestCreateReview_Validation(t *testing.T) {
	repo := &fakeReviewRepo{reviews: map[uuid.UUID]*domainReview.Review{}}
	s := NewService(repo, &fakeRatings{calls: map[uuid.UUID][]ratingsCall{}}, 0)

	tests := []struct {
		name string
		req  CreateReviewRequest
	}{
		{"rating too high", CreateReviewRequest{Review: "ok", Rating: 6, Tour: uuid.New(), User: uuid.New()}},
		{"rating too low", CreateReviewRequest{Review: "ok", Rating: 0.5, Tour: uuid.New(), User: uuid.New()}},
		{"empty review", CreateReviewRequest{Rating: 4, Tour: uuid.New(), User: uuid.New()}},
		{"missing tour", CreateReviewRequest{Review: "ok", Rating: 4, User: uuid.New()}},
		{"missing user", CreateReviewRequest{Review: "ok", Rating: 4, Tour: uuid.New()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rv, err := tt.req.Build()
			require.NoError(t, err)

			_, err = s.Create(context.Background(), rv)
			assert.Equal(t, appErrors.KindValidation, appErrors.KindOf(err))
		})
	}
}

func TestCreateReview_OnePerTourAndUser(t *testing.T) {
	repo := &fakeReviewRepo{reviews: map[uuid.UUID]*domainReview.Review{}}
	s := NewService(repo, &fakeRatings{calls: map[uuid.UUID][]ratingsCall{}}, 0)
	tourID, userID := uuid.New(), uuid.New()

	rv, _ := (&CreateReviewRequest{Review: "Great", Rating: 5, Tour: tourID, User: userID}).Build()
	_, err := s.Create(context.Background(), rv)
	require.NoError(t, err)

	again, _ := (&CreateReviewRequest{Review: "Great again", Rating: 4, Tour: tourID, User: userID}).Build()
	_, err = s.Create(context.Background(), again)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateValue)
}
