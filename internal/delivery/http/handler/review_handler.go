package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainResource "tour-booking/internal/domain/resource"
	domainReview "tour-booking/internal/domain/review"
	"tour-booking/internal/middleware"
	"tour-booking/internal/usecase/resource"
	"tour-booking/internal/usecase/review"
	appErrors "tour-booking/pkg/errors"
)

type ReviewHandler struct {
	reviews *ResourceHandler[domainReview.Review]
	nested  *ResourceHandler[domainReview.Review]
}

func NewReviewHandler(service *review.Service) *ReviewHandler {
	newDraft := func() resource.Draft[domainReview.Review] { return &review.CreateReviewRequest{} }
	newPatch := func() resource.Patch[domainReview.Review] { return &review.UpdateReviewRequest{} }

	return &ReviewHandler{
		reviews: NewResourceHandler(service.Service, newDraft, newPatch,
			WithPrepare(fillReview("")),
		),
		nested: NewResourceHandler(service.Service, newDraft, newPatch,
			WithScope[domainReview.Review](scopeByTour),
			WithPrepare(fillReview("id")),
		),
	}
}

// RegisterRoutes expects an authenticated group.
func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/reviews", h.reviews.GetAll)
	router.GET("/reviews/:id", h.reviews.GetOne)
	router.GET("/tours/:id/reviews", h.nested.GetAll)
}

// RegisterAuthorRoutes expects a group open to the user role only.
func (h *ReviewHandler) RegisterAuthorRoutes(router *gin.RouterGroup) {
	router.POST("/reviews", h.reviews.CreateOne)
	router.POST("/tours/:id/reviews", h.nested.CreateOne)
}

// RegisterModerationRoutes expects a group open to users and admins.
func (h *ReviewHandler) RegisterModerationRoutes(router *gin.RouterGroup) {
	router.PATCH("/reviews/:id", h.reviews.UpdateOne)
	router.DELETE("/reviews/:id", h.reviews.DeleteOne)
}

func scopeByTour(c *gin.Context) domainResource.Scope {
	tourID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// an unparsable id matches no tour
		return domainResource.Scope{"tourId": uuid.Nil}
	}
	return domainResource.Scope{"tourId": tourID}
}

// fillReview defaults the tour from tourParam and the author from the session.
func fillReview(tourParam string) func(c *gin.Context, rv *domainReview.Review) error {
	return func(c *gin.Context, rv *domainReview.Review) error {
		if rv.TourID == uuid.Nil && tourParam != "" {
			tourID, err := uuid.Parse(c.Param(tourParam))
			if err != nil {
				return appErrors.Validation("invalid tour id: "+c.Param(tourParam), err)
			}
			rv.TourID = tourID
		}
		if rv.UserID == uuid.Nil {
			userID, err := middleware.GetUserID(c)
			if err != nil {
				return err
			}
			rv.UserID = userID
		}
		return nil
	}
}
