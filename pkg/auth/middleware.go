package auth

import (
	"strings"

	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/labstack/echo/v4"
)

const (
	// UserContextKey is the echo context key the authenticated user is
	// stored under.
	UserContextKey = "user"

	authScheme = "Bearer"
)

// Middleware provides echo middleware for authenticating requests.
type Middleware struct {
	service *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// Authenticate requires a valid Bearer access token and loads the user
// into the request context.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.userFromRequest(c)
		if err != nil {
			return err
		}
		c.Set(UserContextKey, user)
		return next(c)
	}
}

// AuthenticateOptional loads the user when a valid Bearer token is present
// but lets anonymous requests through. Routes like the catalog behave
// differently for owners and need this.
func (m *Middleware) AuthenticateOptional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get(echo.HeaderAuthorization) != "" {
			user, err := m.userFromRequest(c)
			if err != nil {
				return err
			}
			c.Set(UserContextKey, user)
		}
		return next(c)
	}
}

// RequireWriter rejects requests from users without the writer role. It
// must run after Authenticate.
func (m *Middleware) RequireWriter(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := UserFromContext(c)
		if user == nil {
			return errcodes.Unauthorized("Authentication required")
		}
		if !user.IsWriter() {
			return errcodes.Forbidden("Performing writer-only actions")
		}
		return next(c)
	}
}

// RequireStaff rejects requests from non-staff users. It must run after
// Authenticate.
func (m *Middleware) RequireStaff(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := UserFromContext(c)
		if user == nil {
			return errcodes.Unauthorized("Authentication required")
		}
		if !user.IsStaff {
			return errcodes.Forbidden("Performing staff-only actions")
		}
		return next(c)
	}
}

func (m *Middleware) userFromRequest(c echo.Context) (*models.User, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return nil, errcodes.Unauthorized("Authentication required")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], authScheme) {
		return nil, errcodes.Unauthorized("Invalid authorization header")
	}

	claims, err := m.service.ValidateAccessToken(parts[1])
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid or expired token")
	}

	user, err := m.service.GetUserByID(c.Request().Context(), claims.UserID)
	if err != nil {
		return nil, errcodes.Unauthorized("Invalid or expired token")
	}

	return user, nil
}

// UserFromContext returns the authenticated user, or nil when the request
// is anonymous.
func UserFromContext(c echo.Context) *models.User {
	user, ok := c.Get(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
