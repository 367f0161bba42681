package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/plateup-dev/plateup/internal/app"
	iauth "github.com/plateup-dev/plateup/internal/auth"
	"github.com/plateup-dev/plateup/internal/handlers"
	"github.com/plateup-dev/plateup/internal/middleware"
	"github.com/plateup-dev/plateup/internal/models"
	"github.com/plateup-dev/plateup/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, cfg *app.Config, sessions *iauth.SessionService, verifications *services.VerificationService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if verifications == nil {
		return nil, fmt.Errorf("verification service must be provided")
	}

	users, err := services.NewUserService(db)
	if err != nil {
		return nil, err
	}
	orderService, err := services.NewOrderService(db)
	if err != nil {
		return nil, err
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.GET("/healthz", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(users, verifications, sessions, cfg.Auth.SessionTTL, cfg.Server.SecureCookies)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.GET("/verify", authHandler.Verify)
		auth.POST("/login", authHandler.Login)
	}

	requireAuth := middleware.Auth(sessions)

	authed := r.Group("/")
	authed.Use(requireAuth)

	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/me", authHandler.Me)

	driverOrders := handlers.NewDriverOrderHandler(orderService)
	driver := authed.Group("/driver")
	driver.Use(middleware.RequireRole(models.RoleDriver))
	{
		driver.GET("/orders", driverOrders.List)
		driver.POST("/orders/:id/status", driverOrders.Transition)
	}

	return r, nil
}
