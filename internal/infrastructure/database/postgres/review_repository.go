package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tour-booking/internal/domain/review"
	"tour-booking/internal/infrastructure/database/postgres/models"
)

type ReviewRepository struct {
	*Store[review.Review, models.ReviewModel]
	db *DB
}

var _ review.Repository = (*ReviewRepository)(nil)

func authorColumns(tx *gorm.DB) *gorm.DB {
	return tx.Select("id", "name", "photo")
}

func NewReviewRepository(db *DB) (*ReviewRepository, error) {
	store, err := NewStore(db,
		Mapper[review.Review, models.ReviewModel]{ToModel: toReviewModel, ToEntity: toReviewEntity},
		WithPreload("User", authorColumns),
	)
	if err != nil {
		return nil, err
	}
	return &ReviewRepository{Store: store, db: db}, nil
}

type ratingSummaryRow struct {
	Quantity int
	Average  float64
}

// Summarize aggregates the ratings of every review of a tour.
func (r *ReviewRepository) Summarize(ctx context.Context, tourID uuid.UUID) (review.RatingSummary, error) {
	var row ratingSummaryRow
	err := r.db.conn(ctx).
		Model(&models.ReviewModel{}).
		Select("COUNT(*) AS quantity, COALESCE(AVG(rating), 0) AS average").
		Where("tour_id = ?", tourID).
		Scan(&row).Error
	if err != nil {
		return review.RatingSummary{}, fmt.Errorf("failed to summarize reviews: %w", err)
	}

	return review.RatingSummary{Quantity: row.Quantity, Average: row.Average}, nil
}

func toReviewModel(rv *review.Review) *models.ReviewModel {
	return &models.ReviewModel{
		ID:        rv.ID,
		Review:    rv.Review,
		Rating:    rv.Rating,
		TourID:    rv.TourID,
		UserID:    rv.UserID,
		CreatedAt: rv.CreatedAt,
	}
}

func toReviewEntity(m *models.ReviewModel) *review.Review {
	rv := &review.Review{
		ID:        m.ID,
		Review:    m.Review,
		Rating:    m.Rating,
		TourID:    m.TourID,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
	if m.User != nil {
		rv.User = &review.Author{
			ID:    m.User.ID,
			Name:  m.User.Name,
			Photo: m.User.Photo,
		}
	}
	return rv
}
