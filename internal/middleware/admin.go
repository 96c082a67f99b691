package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/brunodmn/pokehub/internal/services"
	"github.com/brunodmn/pokehub/pkg/errors"
	"github.com/brunodmn/pokehub/pkg/response"
)

// RequireAdmin permits only authenticated users whose account carries the
// admin flag. It must run after Auth. The flag is read from the database on
// every request so revocations take effect immediately.
func RequireAdmin(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(CtxUserIDKey)
		if userID == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !user.IsAdmin {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
