package handlers

import (
	"github.com/arafat90/clientflow/backend/internal/models"
	"github.com/labstack/echo/v4"
)

// getClaimsFromContext returns the JWT claims stored by the auth
// middleware, or nil when the request is unauthenticated.
func getClaimsFromContext(c echo.Context) *models.JwtCustomClaims {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// getUserIDFromContext returns the authenticated user id, 0 when absent.
func getUserIDFromContext(c echo.Context) uint {
	claims := getClaimsFromContext(c)
	if claims == nil {
		return 0
	}
	return claims.UserID
}
