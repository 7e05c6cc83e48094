package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tour-booking/internal/config"
	"tour-booking/internal/delivery/http/handler"
	"tour-booking/internal/delivery/http/view"
	domainUser "tour-booking/internal/domain/user"
	"tour-booking/internal/logger"
	"tour-booking/internal/middleware"
	"tour-booking/internal/usecase/booking"
	"tour-booking/internal/usecase/resource"
	"tour-booking/internal/usecase/review"
	"tour-booking/internal/usecase/tour"
	"tour-booking/internal/usecase/user"
)

// Services are the wired use cases the router exposes.
type Services struct {
	Gate     middleware.Authenticator
	Users    *user.Service
	Admin    *resource.Service[domainUser.User]
	Tours    *tour.Service
	Reviews  *review.Service
	Bookings *booking.Service
	Live     handler.LiveFeed
	Limiter  *middleware.RateLimiter
	Health   func() error
}

func SetupRoutes(cfg *config.Config, s *Services) (*gin.Engine, error) {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Add middleware in order: recovery, request ID, logging, security headers, CORS, request size limit
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(&cfg.CORS))
	router.Use(middleware.RequestSizeLimitMiddleware(cfg.Server.MaxRequestBytes))

	router.GET("/health", func(c *gin.Context) {
		if err := s.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "Database connection failed",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Service is running",
		})
	})
	router.NoRoute(handler.NotFound)

	pages, err := view.New(s.Tours, s.Bookings, s.Users, s.Gate, cfg)
	if err != nil {
		return nil, err
	}
	pages.RegisterRoutes(router)

	userHandler := handler.NewUserHandler(s.Users, s.Admin, cfg)
	tourHandler := handler.NewTourHandler(s.Tours)
	reviewHandler := handler.NewReviewHandler(s.Reviews)
	bookingHandler := handler.NewBookingHandler(s.Bookings, s.Live)

	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(s.Limiter))

	v1 := api.Group("/v1")
	{
		userHandler.RegisterRoutes(v1)
		tourHandler.RegisterRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(s.Gate))
		{
			userHandler.RegisterProfileRoutes(protected)
			reviewHandler.RegisterRoutes(protected)
			bookingHandler.RegisterRoutes(protected)

			// Customer routes
			customer := protected.Group("")
			customer.Use(middleware.CustomerOnly())
			{
				reviewHandler.RegisterAuthorRoutes(customer)
			}

			moderation := protected.Group("")
			moderation.Use(middleware.RoleMiddleware(domainUser.RoleUser, domainUser.RoleAdmin))
			{
				reviewHandler.RegisterModerationRoutes(moderation)
			}

			guides := protected.Group("")
			guides.Use(middleware.RoleMiddleware(domainUser.RoleAdmin, domainUser.RoleLeadGuide, domainUser.RoleGuide))
			{
				tourHandler.RegisterGuideRoutes(guides)
			}

			// Lead guide and admin routes
			staff := protected.Group("")
			staff.Use(middleware.StaffOnly())
			{
				tourHandler.RegisterStaffRoutes(staff)
				bookingHandler.RegisterStaffRoutes(staff)
			}

			admin := protected.Group("")
			admin.Use(middleware.AdminOnly())
			{
				userHandler.RegisterAdminRoutes(admin)
			}
		}
	}

	logger.Info("All routes initialized")
	return router, nil
}
