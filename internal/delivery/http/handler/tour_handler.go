package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainTour "tour-booking/internal/domain/tour"
	"tour-booking/internal/usecase/resource"
	"tour-booking/internal/usecase/tour"
	"tour-booking/pkg/utils"
)

type TourHandler struct {
	service *tour.Service
	*ResourceHandler[domainTour.Tour]
}

func NewTourHandler(service *tour.Service) *TourHandler {
	return &TourHandler{
		service: service,
		ResourceHandler: NewResourceHandler(service.Service,
			func() resource.Draft[domainTour.Tour] { return &tour.CreateTourRequest{} },
			func() resource.Patch[domainTour.Tour] { return &tour.UpdateTourRequest{} },
			WithPopulate[domainTour.Tour]("reviews"),
		),
	}
}

// RegisterRoutes mounts the public tour reads.
func (h *TourHandler) RegisterRoutes(router *gin.RouterGroup) {
	tours := router.Group("/tours")
	{
		tours.GET("", h.GetAll)
		tours.GET("/top-5-cheap", h.TopCheap)
		tours.GET("/tour-stats", h.Stats)
		tours.GET("/tours-within/:distance/center/:latlng/unit/:unit", h.Within)
		tours.GET("/distances/:latlng/unit/:unit", h.Distances)
		tours.GET("/:id", h.GetOne)
	}
}

// RegisterGuideRoutes expects a group open to guides, lead guides and admins.
func (h *TourHandler) RegisterGuideRoutes(router *gin.RouterGroup) {
	router.GET("/tours/monthly-plan/:year", h.MonthlyPlan)
}

// RegisterStaffRoutes expects a group open to lead guides and admins.
func (h *TourHandler) RegisterStaffRoutes(router *gin.RouterGroup) {
	tours := router.Group("/tours")
	{
		tours.POST("", h.CreateOne)
		tours.PATCH("/:id", h.UpdateOne)
		tours.DELETE("/:id", h.DeleteOne)
		tours.POST("/:id/cover", h.CoverUploadURL)
	}
}

func (h *TourHandler) TopCheap(c *gin.Context) {
	c.Request.URL.RawQuery = tour.TopCheapParams(c.Request.URL.Query()).Encode()
	h.GetAll(c)
}

func (h *TourHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"stats": stats})
}

func (h *TourHandler) MonthlyPlan(c *gin.Context) {
	plan, err := h.service.MonthlyPlan(c.Request.Context(), c.Param("year"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"plan": plan})
}

func (h *TourHandler) Within(c *gin.Context) {
	tours, err := h.service.Within(c.Request.Context(), c.Param("distance"), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.ListResponse(c, gin.H{"data": tours}, len(tours))
}

func (h *TourHandler) Distances(c *gin.Context) {
	distances, err := h.service.Distances(c.Request.Context(), c.Param("latlng"), c.Param("unit"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"data": distances})
}

func (h *TourHandler) CoverUploadURL(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	upload, err := h.service.CoverUploadURL(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"upload": upload})
}
