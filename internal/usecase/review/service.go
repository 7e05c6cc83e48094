package review

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainReview "tour-booking/internal/domain/review"
	domainTour "tour-booking/internal/domain/tour"
	"tour-booking/internal/logger"
	"tour-booking/internal/usecase/resource"
	"tour-booking/pkg/utils"
)

// RatingsWriter stores the aggregate rating of a tour.
type RatingsWriter interface {
	UpdateRatings(ctx context.Context, tourID uuid.UUID, quantity int, average float64) error
}

// Service is the review resource. Every write recomputes the rating
// aggregate of the reviewed tour.
type Service struct {
	*resource.Service[domainReview.Review]
	reviewRepo domainReview.Repository
	ratings    RatingsWriter
}

func NewService(reviewRepo domainReview.Repository, ratings RatingsWriter, maxLimit int) *Service {
	s := &Service{
		reviewRepo: reviewRepo,
		ratings:    ratings,
	}
	recompute := func(ctx context.Context, rv *domainReview.Review) error {
		return s.recomputeRatings(ctx, rv.TourID)
	}
	s.Service = resource.NewService[domainReview.Review]("review", reviewRepo,
		func(rv *domainReview.Review) uuid.UUID { return rv.ID },
		resource.WithMaxLimit[domainReview.Review](maxLimit),
		resource.WithHooks(resource.Hooks[domainReview.Review]{
			AfterCreate: recompute,
			AfterUpdate: recompute,
			AfterDelete: recompute,
		}),
	)
	return s
}

func (s *Service) recomputeRatings(ctx context.Context, tourID uuid.UUID) error {
	summary, err := s.reviewRepo.Summarize(ctx, tourID)
	if err != nil {
		return err
	}

	average := domainTour.DefaultRatingsAverage
	if summary.Quantity > 0 {
		average = domainTour.RoundRating(summary.Average)
	}

	if err := s.ratings.UpdateRatings(ctx, tourID, summary.Quantity, average); err != nil {
		return fmt.Errorf("failed to update tour ratings: %w", err)
	}

	logger.Debug("Tour ratings recomputed",
		zap.String("tour_id", tourID.String()),
		zap.Int("quantity", summary.Quantity),
		zap.Float64("average", average),
		zap.String("event", "tour_ratings_recomputed"),
	)
	return nil
}

// CreateReviewRequest is the body of POST /reviews. Nested routes fill Tour
// from the path and User from the session when the body omits them.
type CreateReviewRequest struct {
	Review string    `json:"review"`
	Rating float64   `json:"rating"`
	Tour   uuid.UUID `json:"tour"`
	User   uuid.UUID `json:"user"`
}

func (r *CreateReviewRequest) Build() (*domainReview.Review, error) {
	return &domainReview.Review{
		Review: utils.SanitizeText(r.Review),
		Rating: r.Rating,
		TourID: r.Tour,
		UserID: r.User,
	}, nil
}

type UpdateReviewRequest struct {
	Review *string  `json:"review"`
	Rating *float64 `json:"rating"`
}

func (r *UpdateReviewRequest) Apply(rv *domainReview.Review) error {
	if r.Review != nil {
		rv.Review = utils.SanitizeText(*r.Review)
	}
	if r.Rating != nil {
		rv.Rating = *r.Rating
	}
	return nil
}
