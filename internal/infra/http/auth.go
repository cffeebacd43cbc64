package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const ctxVendorID = "vendorID"

type vendorClaims struct {
	VendorID string `json:"vendorId"`
	jwt.RegisteredClaims
}

// requireVendor authenticates the vendor-facing routes: a bearer JWT signed
// with the shared auth key, carrying the vendor id in vendorId or sub.
func (s *Server) requireVendor(c *gin.Context) {
	if s.cfg.AuthSigningKey == "" {
		writeErrorCode(c, http.StatusInternalServerError, "CONFIG", "auth signing key is not configured")
		return
	}

	header := c.GetHeader("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
		return
	}

	var claims vendorClaims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.AuthSigningKey), nil
	})
	if err != nil || !parsed.Valid {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
		return
	}

	vendorID := claims.VendorID
	if vendorID == "" {
		vendorID = claims.Subject
	}
	if vendorID == "" {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "token carries no vendor id")
		return
	}

	c.Set(ctxVendorID, vendorID)
	c.Next()
}
