package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tour-booking/internal/config"
	domainUser "tour-booking/internal/domain/user"
	"tour-booking/internal/middleware"
	"tour-booking/internal/usecase/resource"
	"tour-booking/internal/usecase/user"
	"tour-booking/pkg/utils"
)

const loggedOutTTL = 10 * time.Second

type UserHandler struct {
	service *user.Service
	admin   *ResourceHandler[domainUser.User]
	cfg     *config.Config
}

func NewUserHandler(service *user.Service, admin *resource.Service[domainUser.User], cfg *config.Config) *UserHandler {
	return &UserHandler{
		service: service,
		admin: NewResourceHandler(admin, nil, func() resource.Patch[domainUser.User] {
			return &user.Patch{}
		}),
		cfg: cfg,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("/signup", h.Signup)
		users.POST("/login", h.Login)
		users.GET("/logout", h.Logout)
		users.POST("/forgotPassword", h.ForgotPassword)
		users.PATCH("/resetPassword/:token", h.ResetPassword)
		users.PATCH("/verifyEmail/:token", h.VerifyEmail)
	}
}

// RegisterProfileRoutes expects an authenticated group.
func (h *UserHandler) RegisterProfileRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.PATCH("/updateMyPassword", h.UpdatePassword)
		users.GET("/me", h.GetMe)
		users.PATCH("/updateMe", h.UpdateMe)
		users.DELETE("/deleteMe", h.DeleteMe)
		users.POST("/me/photo", h.PhotoUploadURL)
	}
}

// RegisterAdminRoutes expects an admin-only group.
func (h *UserHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.admin.GetAll)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.admin.GetOne)
		users.PATCH("/:id", h.admin.UpdateOne)
		users.DELETE("/:id", h.admin.DeleteOne)
	}
}

func (h *UserHandler) Signup(c *gin.Context) {
	var req user.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.sendSession(c, http.StatusCreated, session)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.sendSession(c, http.StatusOK, session)
}

// Logout overwrites the session cookie with a short-lived placeholder.
func (h *UserHandler) Logout(c *gin.Context) {
	h.setCookie(c, "loggedout", loggedOutTTL)
	c.JSON(http.StatusOK, utils.Response{Status: "success"})
}

func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req user.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "token sent to email", nil)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req user.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.service.ResetPassword(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.sendSession(c, http.StatusOK, session)
}

func (h *UserHandler) VerifyEmail(c *gin.Context) {
	session, err := h.service.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.sendSession(c, http.StatusOK, session)
}

func (h *UserHandler) UpdatePassword(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req user.UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.service.UpdatePassword(c.Request.Context(), userID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.sendSession(c, http.StatusOK, session)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	me, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"data": me})
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req user.UpdateMeRequest
	if !bindJSON(c, &req) {
		return
	}

	me, err := h.service.UpdateMe(c.Request.Context(), userID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"user": me})
}

func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.service.DeleteMe(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) PhotoUploadURL(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	upload, err := h.service.PhotoUploadURL(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"upload": upload})
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	respondWithError(c, domainUser.ErrUseSignup)
}

func (h *UserHandler) sendSession(c *gin.Context, status int, session *user.Session) {
	h.setCookie(c, session.Token, time.Duration(h.cfg.JWT.CookieExpiresDays)*24*time.Hour)
	utils.TokenResponse(c, status, session.Token, gin.H{"user": session.User})
}

func (h *UserHandler) setCookie(c *gin.Context, value string, ttl time.Duration) {
	middleware.SetSessionCookie(c, value, ttl, h.cfg.Server.IsProduction())
}
