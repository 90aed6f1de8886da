package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"github.com/projectpulse-io/projectpulse/internal/modules/serializer"
	"github.com/projectpulse-io/projectpulse/internal/modules/service"
)

// UserAuth authenticates requests with session bearer tokens. It resolves the
// token to an active user and sets both on the context.
func UserAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("access denied, no token provided"))
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		user, err := auth.Authenticate(c.Request.Context(), raw)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUnauthorized):
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("invalid or expired token"))
			case errors.Is(err, service.ErrAccountInactive):
				c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr(err.Error()))
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, serializer.DBErr("", err))
			}
			return
		}

		c.Set("user", user)
		c.Set("token", raw)
		c.Next()
	}
}

// RequireRole gates a route group to callers holding the given role.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.MustGet("user").(*model.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr(""))
			return
		}
		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, serializer.ForbiddenErr("admin role required"))
			return
		}
		c.Next()
	}
}
