package middleware

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/plateup-dev/plateup/internal/auth"
	"github.com/plateup-dev/plateup/internal/models"
	"github.com/plateup-dev/plateup/pkg/errors"
	"github.com/plateup-dev/plateup/pkg/response"
)

const (
	// SessionCookieName is the cookie carrying the opaque session token.
	SessionCookieName = "plateup_session"

	CtxUserKey   = "authUser"
	CtxUserIDKey = "userID"
)

// Auth resolves the session cookie to a user and aborts unauthenticated
// requests. Missing, unknown and expired cookies all produce the same 401.
func Auth(sessions *iauth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := sessions.UserByToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if user.Suspended {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Set(CtxUserKey, user)
		c.Set(CtxUserIDKey, user.ID)

		c.Next()
	}
}

// RequireRole restricts a route group to one account role. Must run after Auth.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		if user.Role != role {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Auth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
