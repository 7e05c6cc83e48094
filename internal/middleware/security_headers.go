package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// contentSecurityPolicy lets pages load their stylesheet, images and the
// live bookings socket from this origin only.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"img-src 'self' data: https:",
	"connect-src 'self' ws: wss:",
	"frame-ancestors 'none'",
	"form-action 'self'",
}, "; ")

var securityHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"X-XSS-Protection":        "1; mode=block",
	"Referrer-Policy":         "no-referrer",
	"Content-Security-Policy": contentSecurityPolicy,
}

func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for name, value := range securityHeaders {
			h.Set(name, value)
		}
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
