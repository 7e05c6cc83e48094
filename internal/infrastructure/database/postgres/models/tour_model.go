package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationJSON is stored inside the jsonb location columns.
type LocationJSON struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
	Day         int       `json:"day,omitempty"`
}

type TourModel struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(40);not null;uniqueIndex" json:"name"`
	Slug            string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"slug"`
	Duration        int            `gorm:"not null" json:"duration"`
	MaxGroupSize    int            `gorm:"not null" json:"maxGroupSize"`
	Difficulty      string         `gorm:"type:varchar(20);not null" json:"difficulty"`
	RatingsAverage  float64        `gorm:"not null" json:"ratingsAverage"`
	RatingsQuantity int            `gorm:"not null" json:"ratingsQuantity"`
	Price           float64        `gorm:"not null" json:"price"`
	PriceDiscount   float64        `gorm:"not null" json:"priceDiscount"`
	Summary         string         `gorm:"type:text;not null" json:"summary"`
	Description     string         `gorm:"type:text" json:"description"`
	ImageCover      string         `gorm:"type:varchar(255);not null" json:"imageCover"`
	Images          []string       `gorm:"type:jsonb;serializer:json" json:"images"`
	StartDates      []time.Time    `gorm:"type:jsonb;serializer:json" json:"startDates"`
	SecretTour      bool           `gorm:"not null" json:"secretTour"`
	StartLocation   *LocationJSON  `gorm:"type:jsonb;serializer:json" json:"startLocation"`
	Locations       []LocationJSON `gorm:"type:jsonb;serializer:json" json:"locations"`
	CreatedAt       time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updatedAt"`

	Guides  []UserModel   `gorm:"many2many:tour_guides;joinForeignKey:TourID;joinReferences:UserID" json:"-"`
	Reviews []ReviewModel `gorm:"foreignKey:TourID" json:"-"`
}

func (TourModel) TableName() string {
	return "tours"
}

// TourGuideModel is the join row between tours and their guides.
type TourGuideModel struct {
	TourID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (TourGuideModel) TableName() string {
	return "tour_guides"
}
