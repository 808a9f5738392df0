// Package auth guards endpoints with HS256 bearer tokens and issues them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"postapi/domain"
)

const (
	Issuer     = "postapi"
	contextKey = "user"
)

// Guard rejects any request without a valid bearer token with
// domain.ErrUnauthorized. It must run before anything inspects the
// request path parameters or body.
func Guard(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: echojwt.AlgorithmHS256,
		ContextKey:    contextKey,
		TokenLookup:   "header:Authorization:Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(jwt.RegisteredClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			c.Logger().Debugf("rejected bearer token: %v", err)
			return domain.ErrUnauthorized
		},
	})
}

// IssueToken signs a token for subject that expires after ttl.
func IssueToken(secret, subject string, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("missing secret")
	}
	if subject == "" {
		return "", time.Time{}, errors.New("missing subject")
	}
	now := time.Now()
	exp := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error signing token: %w", err)
	}
	return signed, exp, nil
}

// Subject returns the sub claim of the token accepted by Guard, or "".
func Subject(c echo.Context) string {
	token, ok := c.Get(contextKey).(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return ""
	}
	return claims.Subject
}
