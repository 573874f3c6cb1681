package auth

import (
	"net/http"

	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/labstack/echo/v4"
)

type handler struct {
	service *Service
}

func (h *handler) register(c echo.Context) error {
	p := registerPayload{}
	err := c.Bind(&p)
	if err != nil {
		return err
	}

	user, err := h.service.Register(c.Request().Context(), RegisterUserOptions{
		Username:  p.Username,
		Email:     p.Email,
		Password:  p.Password,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Surname:   p.Surname,
		Role:      p.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *handler) login(c echo.Context) error {
	p := loginPayload{}
	err := c.Bind(&p)
	if err != nil {
		return err
	}

	user, err := h.service.Authenticate(c.Request().Context(), p.Username, p.Password)
	if err != nil {
		return err
	}

	pair, err := h.service.GenerateTokenPair(user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pair)
}

// refresh rotates the pair: the presented refresh token is revoked and a
// fresh one issued alongside the new access token.
func (h *handler) refresh(c echo.Context) error {
	p := refreshPayload{}
	err := c.Bind(&p)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	claims, err := h.service.ValidateRefreshToken(ctx, p.Refresh)
	if err != nil {
		return errcodes.Unauthorized("Invalid or expired refresh token")
	}

	user, err := h.service.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return errcodes.Unauthorized("Invalid or expired refresh token")
	}

	err = h.service.RevokeRefreshToken(ctx, claims)
	if err != nil {
		return err
	}

	pair, err := h.service.GenerateTokenPair(user)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pair)
}

func (h *handler) logout(c echo.Context) error {
	p := logoutPayload{}
	err := c.Bind(&p)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	claims, err := h.service.ValidateRefreshToken(ctx, p.Refresh)
	if err != nil {
		return errcodes.ValidationError("Invalid refresh token")
	}

	err = h.service.RevokeRefreshToken(ctx, claims)
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusResetContent)
}
