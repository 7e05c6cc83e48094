package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "tour-booking/pkg/errors"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Results *int   `json:"results,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// ListResponse writes a collection together with its size.
func ListResponse(c *gin.Context, data any, results int) {
	c.JSON(http.StatusOK, Response{
		Status:  "success",
		Results: &results,
		Data:    data,
	})
}

// TokenResponse writes a session token alongside the payload.
func TokenResponse(c *gin.Context, status int, token string, data any) {
	c.JSON(status, Response{
		Status: "success",
		Token:  token,
		Data:   data,
	})
}

// ErrorResponse writes a failure envelope: "fail" for client errors, "error" otherwise.
func ErrorResponse(c *gin.Context, status int, message string) {
	s := "error"
	if status >= 400 && status < 500 {
		s = "fail"
	}
	c.JSON(status, Response{
		Status:  s,
		Message: message,
	})
}

// RespondWithError writes err with the status of its kind. Unknown errors are
// attached to the context for the request log and, in release mode, reported
// with a generic message.
func RespondWithError(c *gin.Context, err error) {
	kind := appErrors.KindOf(err)
	message := appErrors.MessageOf(err)

	if !kind.Operational() {
		_ = c.Error(err)
		if gin.Mode() != gin.ReleaseMode {
			message = err.Error()
		}
	}

	ErrorResponse(c, kind.HTTPStatus(), message)
}
