package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domainBooking "tour-booking/internal/domain/booking"
	domainResource "tour-booking/internal/domain/resource"
	"tour-booking/internal/logger"
	"tour-booking/internal/middleware"
	"tour-booking/internal/usecase/booking"
	"tour-booking/internal/usecase/resource"
	"tour-booking/pkg/utils"
)

// LiveFeed upgrades a request to a websocket subscription.
type LiveFeed interface {
	ServeWS(w http.ResponseWriter, r *http.Request) error
}

type BookingHandler struct {
	service  *booking.Service
	bookings *ResourceHandler[domainBooking.Booking]
	nested   *ResourceHandler[domainBooking.Booking]
	live     LiveFeed
}

func NewBookingHandler(service *booking.Service, live LiveFeed) *BookingHandler {
	newDraft := func() resource.Draft[domainBooking.Booking] { return &booking.CreateBookingRequest{} }
	newPatch := func() resource.Patch[domainBooking.Booking] { return &booking.UpdateBookingRequest{} }

	return &BookingHandler{
		service:  service,
		bookings: NewResourceHandler(service.Service, newDraft, newPatch, WithPrepare(fillBooking(""))),
		nested: NewResourceHandler(service.Service, newDraft, newPatch,
			WithScope[domainBooking.Booking](func(c *gin.Context) domainResource.Scope {
				tourID, err := uuid.Parse(c.Param("id"))
				if err != nil {
					return domainResource.Scope{"tourId": uuid.Nil}
				}
				return domainResource.Scope{"tourId": tourID}
			}),
			WithPrepare(fillBooking("id")),
		),
		live: live,
	}
}

// RegisterRoutes expects an authenticated group.
func (h *BookingHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/bookings/my-tours", h.MyTours)
}

// RegisterStaffRoutes expects a group open to lead guides and admins.
func (h *BookingHandler) RegisterStaffRoutes(router *gin.RouterGroup) {
	bookings := router.Group("/bookings")
	{
		bookings.GET("", h.bookings.GetAll)
		bookings.POST("", h.bookings.CreateOne)
		bookings.GET("/live", h.Live)
		bookings.GET("/:id", h.bookings.GetOne)
		bookings.PATCH("/:id", h.bookings.UpdateOne)
		bookings.DELETE("/:id", h.bookings.DeleteOne)
	}
	router.GET("/tours/:id/bookings", h.nested.GetAll)
	router.POST("/tours/:id/bookings", h.nested.CreateOne)
}

func (h *BookingHandler) MyTours(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tours, err := h.service.MyTours(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, gin.H{"data": tours}, len(tours))
}

// Live streams booking events over a websocket.
func (h *BookingHandler) Live(c *gin.Context) {
	if err := h.live.ServeWS(c.Writer, c.Request); err != nil {
		logger.Warn("Live feed upgrade failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
		)
		if !c.Writer.Written() {
			utils.ErrorResponse(c, http.StatusBadRequest, "websocket upgrade required")
		}
	}
}

func fillBooking(tourParam string) func(c *gin.Context, b *domainBooking.Booking) error {
	return func(c *gin.Context, b *domainBooking.Booking) error {
		if b.TourID == uuid.Nil && tourParam != "" {
			if tourID, err := uuid.Parse(c.Param(tourParam)); err == nil {
				b.TourID = tourID
			}
		}
		if b.UserID == uuid.Nil {
			if userID, err := middleware.GetUserID(c); err == nil {
				b.UserID = userID
			}
		}
		return nil
	}
}
