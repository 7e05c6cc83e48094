package models

import (
	"time"

	"github.com/google/uuid"
)

type ReviewModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Review    string     `gorm:"type:text;not null" json:"review"`
	Rating    float64    `gorm:"not null" json:"rating"`
	TourID    uuid.UUID  `gorm:"type:uuid;not null" json:"tourId"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null" json:"userId"`
	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"not null" json:"updatedAt"`
	User      *UserModel `gorm:"foreignKey:UserID" json:"-"`
}

func (ReviewModel) TableName() string {
	return "reviews"
}
