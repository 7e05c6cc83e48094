package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tour-booking/internal/domain/booking"
	"tour-booking/internal/infrastructure/database/postgres/models"
)

type BookingRepository struct {
	*Store[booking.Booking, models.BookingModel]
	db *DB
}

var _ booking.Repository = (*BookingRepository)(nil)

func NewBookingRepository(db *DB) (*BookingRepository, error) {
	store, err := NewStore(db,
		Mapper[booking.Booking, models.BookingModel]{ToModel: toBookingModel, ToEntity: toBookingEntity},
		WithPreload("Tour", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "slug", "image_cover")
		}),
		WithPreload("User", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "name", "email")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &BookingRepository{Store: store, db: db}, nil
}

// TourIDsForUser lists the distinct tours a user has booked.
func (r *BookingRepository) TourIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.conn(ctx).
		Model(&models.BookingModel{}).
		Distinct().
		Where("user_id = ?", userID).
		Pluck("tour_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list booked tours: %w", err)
	}
	return ids, nil
}

func toBookingModel(b *booking.Booking) *models.BookingModel {
	return &models.BookingModel{
		ID:        b.ID,
		TourID:    b.TourID,
		UserID:    b.UserID,
		Price:     b.Price,
		Paid:      b.Paid,
		CreatedAt: b.CreatedAt,
	}
}

func toBookingEntity(m *models.BookingModel) *booking.Booking {
	b := &booking.Booking{
		ID:        m.ID,
		TourID:    m.TourID,
		UserID:    m.UserID,
		Price:     m.Price,
		Paid:      m.Paid,
		CreatedAt: m.CreatedAt,
	}
	if m.Tour != nil {
		b.Tour = &booking.TourSummary{
			ID:         m.Tour.ID,
			Name:       m.Tour.Name,
			Slug:       m.Tour.Slug,
			ImageCover: m.Tour.ImageCover,
		}
	}
	if m.User != nil {
		b.User = &booking.UserSummary{
			ID:    m.User.ID,
			Name:  m.User.Name,
			Email: m.User.Email,
		}
	}
	return b
}
