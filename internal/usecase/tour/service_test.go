package tour

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainResource "tour-booking/internal/domain/resource"
	domainTour "tour-booking/internal/domain/tour"
	storage "tour-booking/internal/infrastructure/storage/s3"
	"tour-booking/internal/query"
	appErrors "tour-booking/pkg/errors"
)

type fakeTourRepo struct {
	tours     map[uuid.UUID]*domainTour.Tour
	guides    map[uuid.UUID][]uuid.UUID
	setGuides int
	guidesErr error

	withinCenter domainTour.Point
	withinRadius float64
	withinUnit   domainTour.Unit
	statsFloor   float64
	planYear     int
}

func newFakeTourRepo() *fakeTourRepo {
	return &fakeTourRepo{
		tours:  map[uuid.UUID]*domainTour.Tour{},
		guides: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeTourRepo) Find(_ context.Context, _ domainResource.Scope, _ *query.Descriptor) ([]*domainTour.Tour, error) {
	out := make([]*domainTour.Tour, 0, len(f.tours))
	for _, t := range f.tours {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (f *fakeTourRepo) FindByID(_ context.Context, id uuid.UUID, _ ...string) (*domainTour.Tour, error) {
	t, ok := f.tours[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	c := *t
	c.GuideIDs = nil
	return &c, nil
}

func (f *fakeTourRepo) Insert(_ context.Context, t *domainTour.Tour) error {
	t.ID = uuid.New()
	c := *t
	f.tours[t.ID] = &c
	return nil
}

func (f *fakeTourRepo) UpdateByID(_ context.Context, id uuid.UUID, t *domainTour.Tour) error {
	if _, ok := f.tours[id]; !ok {
		return appErrors.ErrNotFound
	}
	c := *t
	f.tours[id] = &c
	return nil
}

func (f *fakeTourRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	delete(f.tours, id)
	return nil
}

func (f *fakeTourRepo) GetBySlug(_ context.Context, slug string) (*domainTour.Tour, error) {
	for _, t := range f.tours {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, domainTour.ErrTourNotFound
}

// Transaction restores the stored tours and guides when fn fails.
func (f *fakeTourRepo) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tours := make(map[uuid.UUID]*domainTour.Tour, len(f.tours))
	for id, t := range f.tours {
		tours[id] = t
	}
	guides := make(map[uuid.UUID][]uuid.UUID, len(f.guides))
	for id, g := range f.guides {
		guides[id] = g
	}

	if err := fn(ctx); err != nil {
		f.tours, f.guides = tours, guides
		return err
	}
	return nil
}

func (f *fakeTourRepo) SetGuides(_ context.Context, tourID uuid.UUID, guideIDs []uuid.UUID) error {
	f.setGuides++
	if f.guidesErr != nil {
		return f.guidesErr
	}
	f.guides[tourID] = guideIDs
	return nil
}

func (f *fakeTourRepo) UpdateRatings(context.Context, uuid.UUID, int, float64) error { return nil }

func (f *fakeTourRepo) Stats(_ context.Context, minRating float64) ([]domainTour.Stats, error) {
	f.statsFloor = minRating
	return []domainTour.Stats{{Difficulty: "EASY", NumTours: 4}}, nil
}

func (f *fakeTourRepo) MonthlyPlan(_ context.Context, year int) ([]domainTour.MonthPlan, error) {
	f.planYear = year
	return nil, nil
}

func (f *fakeTourRepo) Within(_ context.Context, center domainTour.Point, radius float64, unit domainTour.Unit) ([]*domainTour.Tour, error) {
	f.withinCenter, f.withinRadius, f.withinUnit = center, radius, unit
	return nil, nil
}

func (f *fakeTourRepo) Distances(context.Context, domainTour.Point, domainTour.Unit) ([]domainTour.Distance, error) {
	return []domainTour.Distance{{Name: "The Sea Explorer", Distance: 12.5}}, nil
}

func forestHiker() *CreateTourRequest {
	return &CreateTourRequest{
		Name:         "The Forest Hiker",
		Duration:     5,
		MaxGroupSize: 25,
		Difficulty:   "easy",
		Price:        397,
		Summary:      "Breathtaking hike through the Canadian Banff National Park",
		ImageCover:   "tour-1-cover.jpg",
	}
}

func TestCreateTour(t *testing.T) {
	repo := newFakeTourRepo()
	s := NewService(repo, nil, 0)
	guide := uuid.New()

	req := forestHiker()
	req.Guides = []uuid.UUID{guide}
	draft, err := req.Build()
	require.NoError(t, err)

	created, err := s.Create(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, "the-forest-hiker", created.Slug)
	assert.Equal(t, domainTour.DefaultRatingsAverage, created.RatingsAverage)
	assert.Equal(t, []uuid.UUID{guide}, repo.guides[created.ID])
	assert.NotNil(t, created.Images)
}

func TestCreateTour_GuideFailureRollsBack(t *testing.T) {
	repo := newFakeTourRepo()
	repo.guidesErr = appErrors.Validation("invalid input data: guide does not exist", nil)
	s := NewService(repo, nil, 0)

	req := forestHiker()
	req.Guides = []uuid.UUID{uuid.New()}
	draft, err := req.Build()
	require.NoError(t, err)

	_, err = s.Create(context.Background(), draft)
	require.Error(t, err)
	assert.Equal(t, appErrors.KindValidation, appErrors.KindOf(err))
	assert.Equal(t, 1, repo.setGuides)
	assert.Empty(t, repo.tours)

	repo.guidesErr = nil
	draft, err = req.Build()
	require.NoError(t, err)
	created, err := s.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Len(t, repo.tours, 1)
	assert.Equal(t, req.Guides, repo.guides[created.ID])
}

func TestUpdateTour_GuideFailureRollsBack(t *testing.T) {
	repo := newFakeTourRepo()
	s := NewService(repo, nil, 0)
	ctx := context.Background()

	draft, _ := forestHiker().Build()
	created, err := s.Create(ctx, draft)
	require.NoError(t, err)

	repo.guidesErr = appErrors.Validation("invalid input data: guide does not exist", nil)
	name := "The Forest Wanderer"
	guides := []uuid.UUID{uuid.New()}
	_, err = s.Update(ctx, created.ID, &UpdateTourRequest{Name: &name, Guides: &guides})
	require.Error(t, err)

	assert.Equal(t, "The Forest Hiker", repo.tours[created.ID].Name)
	assert.Equal(t, "the-forest-hiker", repo.tours[created.ID].Slug)
}

func TestCreateTour_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateTourRequest)
	}{
		{"name too short", func(r *CreateTourRequest) { r.Name = "Short" }},
		{"name too long", func(r *CreateTourRequest) { r.Name = "The Incredibly Long Name Of A Tour Over Forty" }},
		{"bad difficulty", func(r *CreateTourRequest) { r.Difficulty = "extreme" }},
		{"discount above price", func(r *CreateTourRequest) { r.PriceDiscount = 500 }},
		{"rating above five", func(r *CreateTourRequest) { r.RatingsAverage = 6 }},
		{"missing summary", func(r *CreateTourRequest) { r.Summary = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeTourRepo()
			s := NewService(repo, nil, 0)

			req := forestHiker()
			tt.mutate(req)
			draft, err := req.Build()
			require.NoError(t, err)

			_, err = s.Create(context.Background(), draft)
			assert.Equal(t, appErrors.KindValidation, appErrors.KindOf(err))
			assert.Empty(t, repo.tours)
		})
	}
}

func TestUpdateTour(t *testing.T) {
	repo := newFakeTourRepo()
	s := NewService(repo, nil, 0)
	ctx := context.Background()

	draft, _ := forestHiker().Build()
	created, err := s.Create(ctx, draft)
	require.NoError(t, err)
	assert.Zero(t, repo.setGuides)

	name := "The Forest Wanderer"
	updated, err := s.Update(ctx, created.ID, &UpdateTourRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "the-forest-wanderer", updated.Slug)
	assert.Zero(t, repo.setGuides)

	guides := []uuid.UUID{}
	_, err = s.Update(ctx, created.ID, &UpdateTourRequest{Guides: &guides})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.setGuides)
	assert.Empty(t, repo.guides[created.ID])

	_, err = s.Update(ctx, uuid.New(), &UpdateTourRequest{Name: &name})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTopCheapParams(t *testing.T) {
	params := TopCheapParams(url.Values{"difficulty": {"easy"}, "limit": {"50"}})

	assert.Equal(t, "5", params.Get("limit"))
	assert.Equal(t, "-ratingsAverage,price", params.Get("sort"))
	assert.Equal(t, "name,price,ratingsAverage,summary,difficulty", params.Get("fields"))
	assert.Equal(t, "easy", params.Get("difficulty"))
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in      string
		want    domainTour.Point
		wantErr bool
	}{
		{"34.111745,-118.113491", domainTour.Point{Lat: 34.111745, Lng: -118.113491}, false},
		{" 51.5 , -0.12 ", domainTour.Point{Lat: 51.5, Lng: -0.12}, false},
		{"34.1", domainTour.Point{}, true},
		{"abc,def", domainTour.Point{}, true},
		{"91,0", domainTour.Point{}, true},
		{"0,181", domainTour.Point{}, true},
		{"NaN,0", domainTour.Point{}, true},
		{"0,Inf", domainTour.Point{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePoint(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domainTour.ErrInvalidPoint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithinAndDistances(t *testing.T) {
	repo := newFakeTourRepo()
	s := NewService(repo, nil, 0)
	ctx := context.Background()

	_, err := s.Within(ctx, "250", "34.1,-118.1", "mi")
	require.NoError(t, err)
	assert.Equal(t, domainTour.Point{Lat: 34.1, Lng: -118.1}, repo.withinCenter)
	assert.Equal(t, 250.0, repo.withinRadius)
	assert.Equal(t, domainTour.UnitMiles, repo.withinUnit)

	_, err = s.Within(ctx, "250", "34.1,-118.1", "yards")
	assert.ErrorIs(t, err, domainTour.ErrInvalidUnit)

	for _, distance := range []string{"-3", "0", "NaN", "Inf", "+Inf", "far"} {
		_, err = s.Within(ctx, distance, "34.1,-118.1", "km")
		assert.Equal(t, appErrors.KindValidation, appErrors.KindOf(err), distance)
	}
	assert.Equal(t, 250.0, repo.withinRadius)

	_, err = s.Within(ctx, "250", "nowhere", "km")
	assert.ErrorIs(t, err, domainTour.ErrInvalidPoint)

	distances, err := s.Distances(ctx, "34.1,-118.1", "km")
	require.NoError(t, err)
	assert.Len(t, distances, 1)
}

func TestStatsAndMonthlyPlan(t *testing.T) {
	repo := newFakeTourRepo()
	s := NewService(repo, nil, 0)
	ctx := context.Background()

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Len(t, stats, 1)
	assert.Equal(t, 4.5, repo.statsFloor)

	_, err = s.MonthlyPlan(ctx, "2021")
	require.NoError(t, err)
	assert.Equal(t, 2021, repo.planYear)

	_, err = s.MonthlyPlan(ctx, "twenty")
	assert.Equal(t, appErrors.KindValidation, appErrors.KindOf(err))
}

type fakePresigner struct{}

func (fakePresigner) PresignUpload(_ context.Context, key, _ string) (*storage.Upload, error) {
	return &storage.Upload{Key: key, URL: "http://bucket/" + key}, nil
}

func TestCoverUploadURL(t *testing.T) {
	repo := newFakeTourRepo()
	ctx := context.Background()

	_, err := NewService(repo, nil, 0).CoverUploadURL(ctx, uuid.New())
	assert.Error(t, err)

	s := NewService(repo, fakePresigner{}, 0)
	at := time.Unix(1700000000, 0)
	s.now = func() time.Time { return at }

	_, err = s.CoverUploadURL(ctx, uuid.New())
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	draft, _ := forestHiker().Build()
	created, err := s.Create(ctx, draft)
	require.NoError(t, err)

	up, err := s.CoverUploadURL(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.TourCoverKey(created.ID.String(), at), up.Key)
}
