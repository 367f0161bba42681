package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plateup-dev/plateup/internal/access"
	iauth "github.com/plateup-dev/plateup/internal/auth"
	"github.com/plateup-dev/plateup/internal/middleware"
	"github.com/plateup-dev/plateup/internal/models"
	"github.com/plateup-dev/plateup/internal/services"
	"github.com/plateup-dev/plateup/pkg/errors"
	"github.com/plateup-dev/plateup/pkg/metrics"
	"github.com/plateup-dev/plateup/pkg/response"
)

// AuthHandler manages signup, email verification, login and logout.
type AuthHandler struct {
	users         *services.UserService
	verifications *services.VerificationService
	sessions      *iauth.SessionService
	cookieTTL     time.Duration
	secureCookie  bool
}

// NewAuthHandler wires the authentication flows together.
func NewAuthHandler(
	users *services.UserService,
	verifications *services.VerificationService,
	sessions *iauth.SessionService,
	cookieTTL time.Duration,
	secureCookie bool,
) *AuthHandler {
	if cookieTTL <= 0 {
		cookieTTL = iauth.DefaultSessionTTL
	}
	return &AuthHandler{
		users:         users,
		verifications: verifications,
		sessions:      sessions,
		cookieTTL:     cookieTTL,
		secureCookie:  secureCookie,
	}
}

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=CUSTOMER RESTAURANT DRIVER"`
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Create(c.Request.Context(), services.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if _, err := h.verifications.IssueToken(c.Request.Context(), user.ID, user.Email); err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":        userPayload(user),
		"destination": access.PostLoginDestination(user.Role, user.Status),
	})
}

// GET /auth/verify?token=...
//
// Consumes the emailed verification link. A winner gets a fresh session and
// is redirected to wherever onboarding continues; every failure mode looks
// identical to the caller.
func (h *AuthHandler) Verify(c *gin.Context) {
	token := c.Query("token")

	user, err := h.verifications.ConsumeToken(c.Request.Context(), token)
	if err != nil {
		response.Error(c, errors.ErrInvalidToken)
		return
	}

	sessionToken, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	h.setSessionCookie(c, sessionToken)
	c.Redirect(http.StatusSeeOther, access.PostLoginDestination(user.Role, user.Status))
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, err)
		return
	}

	token, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()

	h.setSessionCookie(c, token)
	response.Success(c, http.StatusOK, gin.H{
		"user":        userPayload(user),
		"destination": access.PostLoginDestination(user.Role, user.Status),
	})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookieName); err == nil && token != "" {
		if err := h.sessions.DeleteByToken(c.Request.Context(), token); err != nil {
			response.Error(c, errors.ErrInternalServer.WithInternal(err))
			return
		}
	}

	h.clearSessionCookie(c)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":        userPayload(user),
		"destination": access.PostLoginDestination(user.Role, user.Status),
	})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, int(h.cookieTTL.Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.secureCookie, true)
}

func userPayload(user *models.User) gin.H {
	return gin.H{
		"id":     user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
		"status": user.Status,
	}
}
