package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainUser "tour-booking/internal/domain/user"
	"tour-booking/internal/logger"
	appErrors "tour-booking/pkg/errors"
	"tour-booking/pkg/utils"
)

// RoleMiddleware lets the request through only when the authenticated
// user holds one of allowedRoles. It must run after AuthMiddleware.
func RoleMiddleware(allowedRoles ...domainUser.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.RespondWithError(c, appErrors.ErrNotLoggedIn)
			c.Abort()
			return
		}

		if !user.HasRole(allowedRoles...) {
			logger.Warn("Insufficient permissions",
				zap.String("request_id", GetRequestID(c)),
				zap.String("user_id", user.ID.String()),
				zap.String("role", string(user.Role)),
				zap.String("path", c.Request.URL.Path),
			)
			utils.RespondWithError(c, appErrors.ErrInsufficientPermissions)
			c.Abort()
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleAdmin)
}

// StaffOnly admits admins and lead guides.
func StaffOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleAdmin, domainUser.RoleLeadGuide)
}

func CustomerOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleUser)
}
