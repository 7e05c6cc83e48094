package tour

import (
	"time"

	"github.com/google/uuid"

	domainTour "tour-booking/internal/domain/tour"
	"tour-booking/pkg/utils"
)

type LocationRequest struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	Day         int       `json:"day"`
}

func (l *LocationRequest) toEntity() *domainTour.Location {
	if l == nil {
		return nil
	}
	return &domainTour.Location{
		Type:        l.Type,
		Coordinates: l.Coordinates,
		Address:     utils.SanitizeString(l.Address),
		Description: utils.SanitizeString(l.Description),
		Day:         l.Day,
	}
}

func toLocations(in []LocationRequest) []domainTour.Location {
	out := make([]domainTour.Location, 0, len(in))
	for i := range in {
		out = append(out, *in[i].toEntity())
	}
	return out
}

// CreateTourRequest is the body of POST /tours.
type CreateTourRequest struct {
	Name            string            `json:"name"`
	Duration        int               `json:"duration"`
	MaxGroupSize    int               `json:"maxGroupSize"`
	Difficulty      string            `json:"difficulty"`
	RatingsAverage  float64           `json:"ratingsAverage"`
	RatingsQuantity int               `json:"ratingsQuantity"`
	Price           float64           `json:"price"`
	PriceDiscount   float64           `json:"priceDiscount"`
	Summary         string            `json:"summary"`
	Description     string            `json:"description"`
	ImageCover      string            `json:"imageCover"`
	Images          []string          `json:"images"`
	StartDates      []time.Time       `json:"startDates"`
	SecretTour      bool              `json:"secretTour"`
	StartLocation   *LocationRequest  `json:"startLocation"`
	Locations       []LocationRequest `json:"locations"`
	Guides          []uuid.UUID       `json:"guides"`
}

func (r *CreateTourRequest) Build() (*domainTour.Tour, error) {
	t := &domainTour.Tour{
		Name:            utils.SanitizeString(r.Name),
		Duration:        r.Duration,
		MaxGroupSize:    r.MaxGroupSize,
		Difficulty:      domainTour.Difficulty(r.Difficulty),
		RatingsAverage:  r.RatingsAverage,
		RatingsQuantity: r.RatingsQuantity,
		Price:           r.Price,
		PriceDiscount:   r.PriceDiscount,
		Summary:         utils.SanitizeText(r.Summary),
		Description:     utils.SanitizeText(r.Description),
		ImageCover:      r.ImageCover,
		Images:          r.Images,
		StartDates:      r.StartDates,
		SecretTour:      r.SecretTour,
		StartLocation:   r.StartLocation.toEntity(),
		Locations:       toLocations(r.Locations),
		GuideIDs:        r.Guides,
	}
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.StartDates == nil {
		t.StartDates = []time.Time{}
	}
	return t, nil
}

// UpdateTourRequest is the body of PATCH /tours/:id. Guides replaces the
// assigned guides when present.
type UpdateTourRequest struct {
	Name          *string            `json:"name"`
	Duration      *int               `json:"duration"`
	MaxGroupSize  *int               `json:"maxGroupSize"`
	Difficulty    *string            `json:"difficulty"`
	Price         *float64           `json:"price"`
	PriceDiscount *float64           `json:"priceDiscount"`
	Summary       *string            `json:"summary"`
	Description   *string            `json:"description"`
	ImageCover    *string            `json:"imageCover"`
	Images        *[]string          `json:"images"`
	StartDates    *[]time.Time       `json:"startDates"`
	SecretTour    *bool              `json:"secretTour"`
	StartLocation *LocationRequest   `json:"startLocation"`
	Locations     *[]LocationRequest `json:"locations"`
	Guides        *[]uuid.UUID       `json:"guides"`
}

func (r *UpdateTourRequest) Apply(t *domainTour.Tour) error {
	if r.Name != nil {
		t.Name = utils.SanitizeString(*r.Name)
		t.Slug = Slugify(t.Name)
	}
	if r.Duration != nil {
		t.Duration = *r.Duration
	}
	if r.MaxGroupSize != nil {
		t.MaxGroupSize = *r.MaxGroupSize
	}
	if r.Difficulty != nil {
		t.Difficulty = domainTour.Difficulty(*r.Difficulty)
	}
	if r.Price != nil {
		t.Price = *r.Price
	}
	if r.PriceDiscount != nil {
		t.PriceDiscount = *r.PriceDiscount
	}
	if r.Summary != nil {
		t.Summary = utils.SanitizeText(*r.Summary)
	}
	if r.Description != nil {
		t.Description = utils.SanitizeText(*r.Description)
	}
	if r.ImageCover != nil {
		t.ImageCover = *r.ImageCover
	}
	if r.Images != nil {
		t.Images = *r.Images
	}
	if r.StartDates != nil {
		t.StartDates = *r.StartDates
	}
	if r.SecretTour != nil {
		t.SecretTour = *r.SecretTour
	}
	if r.StartLocation != nil {
		t.StartLocation = r.StartLocation.toEntity()
	}
	if r.Locations != nil {
		t.Locations = toLocations(*r.Locations)
	}
	if r.Guides != nil {
		t.GuideIDs = *r.Guides
		if t.GuideIDs == nil {
			t.GuideIDs = []uuid.UUID{}
		}
	}
	return nil
}
