package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainUser "tour-booking/internal/domain/user"
	appErrors "tour-booking/pkg/errors"
	"tour-booking/pkg/utils"
)

const (
	CurrentUserKey = "currentUser"
	UserIDKey      = "userID"
	RoleKey        = "role"

	// SessionCookie carries the session token for browser clients.
	SessionCookie = "jwt"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domainUser.User, error)
}

// AuthMiddleware requires a valid session token, read from the
// Authorization bearer header or the jwt cookie.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.Authenticate(c.Request.Context(), tokenFromRequest(c))
		if err != nil {
			utils.RespondWithError(c, err)
			c.Abort()
			return
		}

		setCurrentUser(c, user)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the user behind the jwt cookie when there
// is one. Any failure continues the request anonymously.
func OptionalAuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err == nil && token != "" {
			if user, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setCurrentUser(c, user)
			}
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if token, err := c.Cookie(SessionCookie); err == nil {
		return token
	}
	return ""
}

func setCurrentUser(c *gin.Context, user *domainUser.User) {
	c.Set(CurrentUserKey, user)
	c.Set(UserIDKey, user.ID)
	c.Set(RoleKey, string(user.Role))
}

// CurrentUser returns the user attached by the auth middleware.
func CurrentUser(c *gin.Context) (*domainUser.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domainUser.User)
	return user, ok && user != nil
}

// GetUserID returns the authenticated user's id or ErrNotLoggedIn.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, appErrors.ErrNotLoggedIn
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return uuid.Nil, appErrors.ErrNotLoggedIn
	}
	return id, nil
}

// SetSessionCookie writes the httpOnly session cookie. It is marked secure in
// production and whenever the request arrived over TLS.
func SetSessionCookie(c *gin.Context, value string, ttl time.Duration, production bool) {
	secure := production || c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, value, int(ttl.Seconds()), "/", "", secure, true)
}
