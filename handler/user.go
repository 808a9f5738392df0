package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"postapi/auth"
	"postapi/domain"
)

type signupRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) Login(c echo.Context) error {
	req := new(loginRequest)
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	user, storedPassword, err := h.Users.FindByUsername(c.Request().Context(), req.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrUnauthorized
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(storedPassword, []byte(req.Password)); err != nil {
		return domain.ErrUnauthorized
	}

	token, exp, err := auth.IssueToken(h.JWTSecret, user.ID, h.TokenTTL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: exp.UTC()})
}

func (h *Handler) NewUser(c echo.Context) error {
	if h.Environment != "dev" && !h.EnableSignup {
		return echo.NewHTTPError(http.StatusForbidden, "Sign up has been disabled.")
	}

	req := new(signupRequest)
	if err := c.Bind(req); err != nil {
		return err
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user, err := h.Users.Create(c.Request().Context(), req.Username, hashedPassword)
	if err != nil {
		return err
	}
	c.Logger().Infof("user %s signed up", user.ID)
	return c.JSON(http.StatusCreated, user)
}
