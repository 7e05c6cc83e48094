package tour

import (
	"time"

	"github.com/google/uuid"

	"tour-booking/internal/domain/review"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "easy"
	DifficultyMedium    Difficulty = "medium"
	DifficultyDifficult Difficulty = "difficult"
)

// Location is a GeoJSON point with a description. Coordinates are [lng, lat].
type Location struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates" validate:"omitempty,len=2"`
	Address     string    `json:"address,omitempty"`
	Description string    `json:"description,omitempty"`
	Day         int       `json:"day,omitempty"`
}

// Guide is the public projection of a user leading a tour.
type Guide struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Photo string    `json:"photo"`
	Role  string    `json:"role"`
}

type Tour struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name" validate:"required,min=10,max=40"`
	Slug            string      `json:"slug"`
	Duration        int         `json:"duration" validate:"required,gt=0"`
	DurationWeeks   float64     `json:"durationWeeks"`
	MaxGroupSize    int         `json:"maxGroupSize" validate:"required,gt=0"`
	Difficulty      Difficulty  `json:"difficulty" validate:"required,difficulty"`
	RatingsAverage  float64     `json:"ratingsAverage" validate:"gte=1,lte=5"`
	RatingsQuantity int         `json:"ratingsQuantity" validate:"gte=0"`
	Price           float64     `json:"price" validate:"required,gt=0"`
	PriceDiscount   float64     `json:"priceDiscount,omitempty" validate:"omitempty,gte=0,ltfield=Price"`
	Summary         string      `json:"summary" validate:"required"`
	Description     string      `json:"description,omitempty"`
	ImageCover      string      `json:"imageCover" validate:"required"`
	Images          []string    `json:"images"`
	StartDates      []time.Time `json:"startDates"`
	SecretTour      bool        `json:"secretTour"`
	StartLocation   *Location   `json:"startLocation,omitempty"`
	Locations       []Location  `json:"locations,omitempty" validate:"dive"`

	GuideIDs []uuid.UUID     `json:"-"`
	Guides   []Guide         `json:"guides"`
	Reviews  []review.Review `json:"reviews,omitempty"`

	// CreatedAt is only set when explicitly projected.
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

const DefaultRatingsAverage = 4.5

// RoundRating rounds to one decimal, e.g. 4.6666 -> 4.7.
func RoundRating(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

// Stats is one difficulty bucket of the tour statistics report.
type Stats struct {
	Difficulty Difficulty `json:"difficulty"`
	NumTours   int        `json:"numTours"`
	NumRatings int        `json:"numRatings"`
	AvgRating  float64    `json:"avgRating"`
	AvgPrice   float64    `json:"avgPrice"`
	MinPrice   float64    `json:"minPrice"`
	MaxPrice   float64    `json:"maxPrice"`
}

// MonthPlan lists the tours starting in one month of a year.
type MonthPlan struct {
	Month         int      `json:"month"`
	NumTourStarts int      `json:"numTourStarts"`
	Tours         []string `json:"tours"`
}

// Distance is a tour's distance from a reference point.
type Distance struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Distance float64   `json:"distance"`
}

type Unit string

const (
	UnitMiles      Unit = "mi"
	UnitKilometers Unit = "km"
)

// EarthRadius returns the Earth radius in the unit.
func (u Unit) EarthRadius() float64 {
	if u == UnitMiles {
		return 3963.2
	}
	return 6378.1
}

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64
	Lng float64
}
