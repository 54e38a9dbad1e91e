package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/laundry-pass-booking/internal/config"
	"github.com/iliyamo/laundry-pass-booking/internal/handler"
	"github.com/iliyamo/laundry-pass-booking/internal/metrics"
	"github.com/iliyamo/laundry-pass-booking/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Passes   *handler.PassHandler
	Schedule *handler.ScheduleHandler
}

// Register wires all routes onto the Echo instance. /healthz, /metrics
// and the auth endpoints are open; everything else sits behind JWT auth,
// with the admin surface additionally role-gated.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rl config.RateLimitConfig, cc config.CacheConfig, db *sql.DB, rdb *redis.Client) {
	e.Validator = handler.NewRequestValidator()

	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	auth := e.Group("/v1/auth")
	auth.Use(middleware.RateLimit(rl, rdb))
	auth.POST("/register-admin", h.Auth.RegisterAdministrator)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	v1.Use(middleware.RateLimit(rl, rdb))

	v1.GET("/me", h.Auth.Me)

	// Resident surface: any authenticated role.
	v1.POST("/passes/lock", h.Passes.Lock, middleware.RequireRole("RESIDENT", "ADMINISTRATOR"))
	v1.DELETE("/passes/lock", h.Passes.Unlock, middleware.RequireRole("RESIDENT", "ADMINISTRATOR"))
	v1.POST("/passes", h.Passes.Book, middleware.RequireRole("RESIDENT", "ADMINISTRATOR"))
	v1.DELETE("/passes", h.Passes.Cancel, middleware.RequireRole("RESIDENT", "ADMINISTRATOR"))
	v1.GET("/passes/active", h.Passes.Active, middleware.RequireRole("RESIDENT", "ADMINISTRATOR"))
	v1.GET("/schedule", h.Schedule.Week,
		middleware.RequireRole("RESIDENT", "ADMINISTRATOR"), middleware.CacheSchedule(cc, rdb))

	// Administrator surface. The user service re-checks the issuer's
	// privilege against stored data; the role gate just fails fast.
	adminOnly := middleware.RequireRole("ADMINISTRATOR")
	v1.POST("/users", h.Users.RegisterResident, adminOnly)
	v1.GET("/users", h.Users.List, adminOnly)
	v1.DELETE("/users/:username", h.Users.Delete, adminOnly)
	v1.GET("/admin/schedule", h.Schedule.AdminWeek, adminOnly)
}
