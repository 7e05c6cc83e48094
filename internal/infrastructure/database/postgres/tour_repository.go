package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tour-booking/internal/domain/review"
	"tour-booking/internal/domain/tour"
	"tour-booking/internal/infrastructure/database/postgres/models"
)

// haversine is the great-circle distance in radians between start_location
// and the point bound to the three placeholders (lat, lat, lng).
const haversine = `(2 * asin(sqrt(
	power(sin(radians(((start_location->'coordinates'->>1)::float8 - ?) / 2)), 2) +
	cos(radians(?)) * cos(radians((start_location->'coordinates'->>1)::float8)) *
	power(sin(radians(((start_location->'coordinates'->>0)::float8 - ?) / 2)), 2)
)))`

type TourRepository struct {
	*Store[tour.Tour, models.TourModel]
	db *DB
}

var _ tour.Repository = (*TourRepository)(nil)

func publicTours(tx *gorm.DB) *gorm.DB {
	return tx.Where(clause.Neq{Column: column("secret_tour"), Value: true})
}

func guideColumns(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "name", "email", "photo", "role")
}

func NewTourRepository(db *DB) (*TourRepository, error) {
	store, err := NewStore(db,
		Mapper[tour.Tour, models.TourModel]{ToModel: toTourModel, ToEntity: toTourEntity},
		WithBaseScope(publicTours),
		WithHiddenColumns("created_at"),
		WithPreload("Guides", guideColumns),
		WithPopulate("reviews", "Reviews", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		}),
		WithPopulate("reviews", "Reviews.User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "photo")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &TourRepository{Store: store, db: db}, nil
}

func (r *TourRepository) GetBySlug(ctx context.Context, slug string) (*tour.Tour, error) {
	var dbModel models.TourModel
	err := r.Store.base(ctx).
		Omit("created_at").
		Preload("Guides", guideColumns).
		Preload("Reviews", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at DESC") }).
		Preload("Reviews.User", func(tx *gorm.DB) *gorm.DB { return tx.Select("id", "name", "photo") }).
		Where(clause.Eq{Column: column("slug"), Value: slug}).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tour.ErrTourNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tour by slug: %w", err)
	}

	return toTourEntity(&dbModel), nil
}

// SetGuides replaces the guide assignment of a tour.
func (r *TourRepository) SetGuides(ctx context.Context, tourID uuid.UUID, guideIDs []uuid.UUID) error {
	err := r.db.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tour_id = ?", tourID).Delete(&models.TourGuideModel{}).Error; err != nil {
			return err
		}
		if len(guideIDs) == 0 {
			return nil
		}

		rows := make([]models.TourGuideModel, 0, len(guideIDs))
		seen := make(map[uuid.UUID]struct{}, len(guideIDs))
		for _, id := range guideIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			rows = append(rows, models.TourGuideModel{TourID: tourID, UserID: id})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to set tour guides: %w", translateError(err))
	}
	return nil
}

// UpdateRatings stores the review aggregate, secret tours included.
func (r *TourRepository) UpdateRatings(ctx context.Context, tourID uuid.UUID, quantity int, average float64) error {
	result := r.db.conn(ctx).
		Model(&models.TourModel{}).
		Where("id = ?", tourID).
		Updates(map[string]interface{}{
			"ratings_quantity": quantity,
			"ratings_average":  average,
			"updated_at":       time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update tour ratings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return tour.ErrTourNotFound
	}

	return nil
}

type tourStatsRow struct {
	Difficulty string
	NumTours   int
	NumRatings int
	AvgRating  float64
	AvgPrice   float64
	MinPrice   float64
	MaxPrice   float64
}

// Stats groups tours rated at least minRating by difficulty, cheapest first.
func (r *TourRepository) Stats(ctx context.Context, minRating float64) ([]tour.Stats, error) {
	var rows []tourStatsRow
	err := r.Store.base(ctx).
		Select(`UPPER(difficulty) AS difficulty,
			COUNT(*) AS num_tours,
			COALESCE(SUM(ratings_quantity), 0) AS num_ratings,
			AVG(ratings_average) AS avg_rating,
			AVG(price) AS avg_price,
			MIN(price) AS min_price,
			MAX(price) AS max_price`).
		Where("ratings_average >= ?", minRating).
		Group("UPPER(difficulty)").
		Order("avg_price").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get tour stats: %w", err)
	}

	stats := make([]tour.Stats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, tour.Stats{
			Difficulty: tour.Difficulty(row.Difficulty),
			NumTours:   row.NumTours,
			NumRatings: row.NumRatings,
			AvgRating:  tour.RoundRating(row.AvgRating),
			AvgPrice:   row.AvgPrice,
			MinPrice:   row.MinPrice,
			MaxPrice:   row.MaxPrice,
		})
	}
	return stats, nil
}

type monthPlanRow struct {
	Month         int
	NumTourStarts int
	Tours         string
}

// MonthlyPlan counts tour starts per month of year, busiest month first.
func (r *TourRepository) MonthlyPlan(ctx context.Context, year int) ([]tour.MonthPlan, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	var rows []monthPlanRow
	err := r.db.conn(ctx).Raw(`
		SELECT EXTRACT(MONTH FROM (sd.value #>> '{}')::timestamptz AT TIME ZONE 'UTC')::int AS month,
			COUNT(*) AS num_tour_starts,
			json_agg(t.name ORDER BY t.name)::text AS tours
		FROM tours t
		CROSS JOIN LATERAL jsonb_array_elements(t.start_dates) AS sd(value)
		WHERE t.secret_tour = FALSE
			AND (sd.value #>> '{}')::timestamptz >= ?
			AND (sd.value #>> '{}')::timestamptz < ?
		GROUP BY month
		ORDER BY num_tour_starts DESC, month
		LIMIT 12`, from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly plan: %w", err)
	}

	plan := make([]tour.MonthPlan, 0, len(rows))
	for _, row := range rows {
		var names []string
		if err := json.Unmarshal([]byte(row.Tours), &names); err != nil {
			return nil, fmt.Errorf("failed to decode monthly plan tours: %w", err)
		}
		plan = append(plan, tour.MonthPlan{
			Month:         row.Month,
			NumTourStarts: row.NumTourStarts,
			Tours:         names,
		})
	}
	return plan, nil
}

// Within returns the tours starting inside the circle around center.
func (r *TourRepository) Within(ctx context.Context, center tour.Point, radius float64, unit tour.Unit) ([]*tour.Tour, error) {
	var rows []models.TourModel
	err := r.Store.base(ctx).
		Omit("created_at").
		Preload("Guides", guideColumns).
		Where("start_location IS NOT NULL").
		Where(haversine+" <= ?", center.Lat, center.Lat, center.Lng, radius/unit.EarthRadius()).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tours within radius: %w", err)
	}

	tours := make([]*tour.Tour, 0, len(rows))
	for i := range rows {
		tours = append(tours, toTourEntity(&rows[i]))
	}
	return tours, nil
}

// Distances measures every tour start from a point, nearest first.
func (r *TourRepository) Distances(ctx context.Context, from tour.Point, unit tour.Unit) ([]tour.Distance, error) {
	var rows []tour.Distance
	err := r.Store.base(ctx).
		Select("id, name, "+haversine+" * ? AS distance", from.Lat, from.Lat, from.Lng, unit.EarthRadius()).
		Where("start_location IS NOT NULL").
		Order("distance").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute tour distances: %w", err)
	}
	return rows, nil
}

func toLocationModel(l *tour.Location) *models.LocationJSON {
	if l == nil {
		return nil
	}
	typ := l.Type
	if typ == "" {
		typ = "Point"
	}
	return &models.LocationJSON{
		Type:        typ,
		Coordinates: l.Coordinates,
		Address:     l.Address,
		Description: l.Description,
		Day:         l.Day,
	}
}

func toLocationEntity(m *models.LocationJSON) *tour.Location {
	if m == nil {
		return nil
	}
	return &tour.Location{
		Type:        m.Type,
		Coordinates: m.Coordinates,
		Address:     m.Address,
		Description: m.Description,
		Day:         m.Day,
	}
}

func toTourModel(t *tour.Tour) *models.TourModel {
	m := &models.TourModel{
		ID:              t.ID,
		Name:            t.Name,
		Slug:            t.Slug,
		Duration:        t.Duration,
		MaxGroupSize:    t.MaxGroupSize,
		Difficulty:      string(t.Difficulty),
		RatingsAverage:  t.RatingsAverage,
		RatingsQuantity: t.RatingsQuantity,
		Price:           t.Price,
		PriceDiscount:   t.PriceDiscount,
		Summary:         t.Summary,
		Description:     t.Description,
		ImageCover:      t.ImageCover,
		Images:          t.Images,
		StartDates:      t.StartDates,
		SecretTour:      t.SecretTour,
		StartLocation:   toLocationModel(t.StartLocation),
		Locations:       make([]models.LocationJSON, 0, len(t.Locations)),
	}
	if m.Images == nil {
		m.Images = []string{}
	}
	if m.StartDates == nil {
		m.StartDates = []time.Time{}
	}
	for i := range t.Locations {
		m.Locations = append(m.Locations, *toLocationModel(&t.Locations[i]))
	}
	if t.CreatedAt != nil {
		m.CreatedAt = *t.CreatedAt
	}
	return m
}

func toTourEntity(m *models.TourModel) *tour.Tour {
	t := &tour.Tour{
		ID:              m.ID,
		Name:            m.Name,
		Slug:            m.Slug,
		Duration:        m.Duration,
		DurationWeeks:   float64(m.Duration) / 7,
		MaxGroupSize:    m.MaxGroupSize,
		Difficulty:      tour.Difficulty(m.Difficulty),
		RatingsAverage:  m.RatingsAverage,
		RatingsQuantity: m.RatingsQuantity,
		Price:           m.Price,
		PriceDiscount:   m.PriceDiscount,
		Summary:         m.Summary,
		Description:     m.Description,
		ImageCover:      m.ImageCover,
		Images:          m.Images,
		StartDates:      m.StartDates,
		SecretTour:      m.SecretTour,
		StartLocation:   toLocationEntity(m.StartLocation),
		Guides:          make([]tour.Guide, 0, len(m.Guides)),
	}
	for i := range m.Locations {
		t.Locations = append(t.Locations, *toLocationEntity(&m.Locations[i]))
	}
	for _, g := range m.Guides {
		t.Guides = append(t.Guides, tour.Guide{
			ID:    g.ID,
			Name:  g.Name,
			Email: g.Email,
			Photo: g.Photo,
			Role:  g.Role,
		})
	}
	if m.Reviews != nil {
		t.Reviews = make([]review.Review, 0, len(m.Reviews))
		for i := range m.Reviews {
			t.Reviews = append(t.Reviews, *toReviewEntity(&m.Reviews[i]))
		}
	}
	if !m.CreatedAt.IsZero() {
		created := m.CreatedAt
		t.CreatedAt = &created
	}
	return t
}
