package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all auth routes and returns the service and
// middleware so other packages can gate their own routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, jwtSecret string) (*Service, *Middleware) {
	service := NewService(db, jwtSecret)
	m := NewMiddleware(service)

	h := &handler{service: service}

	g := e.Group("/auth")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/token/refresh", h.refresh)
	g.POST("/logout", h.logout)

	return service, m
}
