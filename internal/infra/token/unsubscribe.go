package token

import (
	"errors"
	"fmt"

	"tendorai/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const unsubscribePurpose = "unsubscribe"

// UnsubscribeSigner mints and verifies the signed bearer tokens embedded in
// digest emails. Tokens carry the vendor id and purpose only and never
// expire: an unsubscribe link must keep working however old the email is.
type UnsubscribeSigner struct {
	key []byte
}

func NewUnsubscribeSigner(emailSigningKey string) (*UnsubscribeSigner, error) {
	if emailSigningKey == "" {
		return nil, fmt.Errorf("%w: email signing key is required", domain.ErrConfig)
	}
	return &UnsubscribeSigner{key: []byte(emailSigningKey)}, nil
}

type unsubscribeClaims struct {
	VendorID string `json:"vendorId"`
	Purpose  string `json:"purpose"`
	jwt.RegisteredClaims
}

func (s *UnsubscribeSigner) Sign(vendorID string) (string, error) {
	if vendorID == "" {
		return "", fmt.Errorf("%w: vendor id is required", domain.ErrValidation)
	}
	claims := unsubscribeClaims{
		VendorID: vendorID,
		Purpose:  unsubscribePurpose,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify returns the vendor id carried by a valid unsubscribe token. Any
// tamper, wrong algorithm or wrong purpose is rejected.
func (s *UnsubscribeSigner) Verify(tokenString string) (string, error) {
	var claims unsubscribeClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.key, nil
	})
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: invalid unsubscribe token", domain.ErrValidation)
	}
	if claims.Purpose != unsubscribePurpose || claims.VendorID == "" {
		return "", fmt.Errorf("%w: invalid unsubscribe token", domain.ErrValidation)
	}
	return claims.VendorID, nil
}
