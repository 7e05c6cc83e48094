package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tour-booking/internal/logger"
	"tour-booking/internal/middleware"
	appErrors "tour-booking/pkg/errors"
	"tour-booking/pkg/utils"
)

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if !appErrors.KindOf(err).Operational() {
		logger.Error("Unhandled error",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.String("path", c.Request.URL.Path),
		)
	}

	utils.RespondWithError(c, err)
}

// bindJSON decodes the request body into v. An empty body decodes to the
// zero value.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid "+param+": "+c.Param(param))
		return uuid.Nil, false
	}
	return id, true
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	utils.ErrorResponse(c, http.StatusNotFound, "can't find "+c.Request.URL.Path+" on this server")
}
