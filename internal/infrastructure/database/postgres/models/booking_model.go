package models

import (
	"time"

	"github.com/google/uuid"
)

type BookingModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TourID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"tourId"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	Price     float64    `gorm:"not null" json:"price"`
	Paid      bool       `gorm:"not null" json:"paid"`
	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null" json:"updatedAt"`
	Tour      *TourModel `gorm:"foreignKey:TourID" json:"-"`
	User      *UserModel `gorm:"foreignKey:UserID" json:"-"`
}

func (BookingModel) TableName() string {
	return "bookings"
}
