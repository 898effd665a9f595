package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cbout22/repofiles/internal/auth"
)

// identityKey is the echo context key holding the resolved caller.
const identityKey = "repofiles.identity"

// requireIdentity resolves the bearer session token into an Identity
// and rejects requests that carry none or an unknown one.
func (s *Server) requireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		}

		id, err := s.store.Identify(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid session token"})
		}

		c.Set(identityKey, id)
		return next(c)
	}
}

// identityFrom returns the Identity set by requireIdentity.
func identityFrom(c echo.Context) *auth.Identity {
	id, _ := c.Get(identityKey).(*auth.Identity)
	return id
}
