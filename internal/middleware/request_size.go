package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tour-booking/pkg/utils"
)

// DefaultMaxRequestSize matches the 10kb JSON body limit of the API.
const DefaultMaxRequestSize = 10 << 10

// RequestSizeLimitMiddleware refuses bodies over maxBytes. Declared lengths
// are checked up front and chunked bodies are capped while they are read.
func RequestSizeLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}
	tooLarge := fmt.Sprintf("request body exceeds the %d byte limit", maxBytes)

	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, tooLarge)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
