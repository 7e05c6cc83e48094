package tour

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	domainTour "tour-booking/internal/domain/tour"
	storage "tour-booking/internal/infrastructure/storage/s3"
	"tour-booking/internal/logger"
	"tour-booking/internal/usecase/resource"
	appErrors "tour-booking/pkg/errors"
)

// StatsMinRating is the rating floor of the tour statistics report.
const StatsMinRating = 4.5

// Presigner signs direct-to-bucket uploads.
type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (*storage.Upload, error)
}

// Service is the tour resource plus its aliases and analytics.
type Service struct {
	*resource.Service[domainTour.Tour]
	tourRepo  domainTour.Repository
	presigner Presigner
	now       func() time.Time
}

func NewService(tourRepo domainTour.Repository, presigner Presigner, maxLimit int) *Service {
	s := &Service{
		tourRepo:  tourRepo,
		presigner: presigner,
		now:       time.Now,
	}
	s.Service = resource.NewService[domainTour.Tour]("tour", tourRepo,
		func(t *domainTour.Tour) uuid.UUID { return t.ID },
		resource.WithMaxLimit[domainTour.Tour](maxLimit),
		resource.WithHooks(resource.Hooks[domainTour.Tour]{
			BeforeCreate: s.beforeCreate,
			AfterCreate:  s.assignGuides,
			AfterUpdate:  s.assignGuides,
		}),
	)
	return s
}

func Slugify(name string) string {
	return slug.Make(name)
}

func (s *Service) beforeCreate(_ context.Context, t *domainTour.Tour) error {
	t.Slug = Slugify(t.Name)
	if t.RatingsAverage == 0 {
		t.RatingsAverage = domainTour.DefaultRatingsAverage
	}
	return nil
}

// assignGuides writes the guide list only when the request carried one.
func (s *Service) assignGuides(ctx context.Context, t *domainTour.Tour) error {
	if t.GuideIDs == nil {
		return nil
	}
	return s.tourRepo.SetGuides(ctx, t.ID, t.GuideIDs)
}

// TopCheapParams rewrites a request into the top-5-cheap alias.
func TopCheapParams(params url.Values) url.Values {
	out := url.Values{}
	for k, v := range params {
		out[k] = v
	}
	out.Set("limit", "5")
	out.Set("sort", "-ratingsAverage,price")
	out.Set("fields", "name,price,ratingsAverage,summary,difficulty")
	return out
}

func (s *Service) GetBySlug(ctx context.Context, tourSlug string) (*domainTour.Tour, error) {
	return s.tourRepo.GetBySlug(ctx, tourSlug)
}

func (s *Service) Stats(ctx context.Context) ([]domainTour.Stats, error) {
	return s.tourRepo.Stats(ctx, StatsMinRating)
}

func (s *Service) MonthlyPlan(ctx context.Context, year string) ([]domainTour.MonthPlan, error) {
	y, err := strconv.Atoi(year)
	if err != nil || y < 1 || y > 9999 {
		return nil, appErrors.Validation(fmt.Sprintf("invalid year: %s", year), err)
	}
	return s.tourRepo.MonthlyPlan(ctx, y)
}

// Within lists tours whose start lies within distance of latlng.
func (s *Service) Within(ctx context.Context, distance, latlng, unit string) ([]*domainTour.Tour, error) {
	center, err := ParsePoint(latlng)
	if err != nil {
		return nil, err
	}
	u, err := ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	d, ok := parseFinite(distance)
	if !ok || d <= 0 {
		return nil, appErrors.Validation(fmt.Sprintf("invalid distance: %s", distance), nil)
	}
	return s.tourRepo.Within(ctx, center, d, u)
}

func (s *Service) Distances(ctx context.Context, latlng, unit string) ([]domainTour.Distance, error) {
	from, err := ParsePoint(latlng)
	if err != nil {
		return nil, err
	}
	u, err := ParseUnit(unit)
	if err != nil {
		return nil, err
	}
	return s.tourRepo.Distances(ctx, from, u)
}

// CoverUploadURL presigns an upload for a tour's cover image.
func (s *Service) CoverUploadURL(ctx context.Context, tourID uuid.UUID) (*storage.Upload, error) {
	if s.presigner == nil {
		return nil, appErrors.New(appErrors.KindUnknown, "UPLOADS_DISABLED", "image uploads are not configured")
	}
	if _, err := s.Get(ctx, tourID); err != nil {
		return nil, err
	}

	upload, err := s.presigner.PresignUpload(ctx, storage.TourCoverKey(tourID.String(), s.now()), "image/jpeg")
	if err != nil {
		return nil, err
	}

	logger.Info("Tour cover upload presigned",
		zap.String("tour_id", tourID.String()),
		zap.String("key", upload.Key),
		zap.String("event", "tour_cover_presigned"),
	)
	return upload, nil
}

// ParsePoint reads "lat,lng".
func ParsePoint(latlng string) (domainTour.Point, error) {
	parts := strings.Split(latlng, ",")
	if len(parts) != 2 {
		return domainTour.Point{}, domainTour.ErrInvalidPoint
	}
	lat, ok := parseFinite(strings.TrimSpace(parts[0]))
	if !ok || lat < -90 || lat > 90 {
		return domainTour.Point{}, domainTour.ErrInvalidPoint
	}
	lng, ok := parseFinite(strings.TrimSpace(parts[1]))
	if !ok || lng < -180 || lng > 180 {
		return domainTour.Point{}, domainTour.ErrInvalidPoint
	}
	return domainTour.Point{Lat: lat, Lng: lng}, nil
}

// parseFinite parses a float and rejects NaN and the infinities.
func parseFinite(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func ParseUnit(unit string) (domainTour.Unit, error) {
	switch u := domainTour.Unit(unit); u {
	case domainTour.UnitMiles, domainTour.UnitKilometers:
		return u, nil
	default:
		return "", domainTour.ErrInvalidUnit
	}
}
