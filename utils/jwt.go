package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// Claims are the identity fields the booking API reads from a bearer token.
// Tokens are issued by the account service; this service only verifies them.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	VendorID string `json:"vendorId,omitempty"`
	jwt.StandardClaims
}

const (
	RoleCustomer = "CUSTOMER"
	RoleVendor   = "VENDOR"
)

// GenerateToken creates a signed HS256 token. Used by tests and local tooling.
func GenerateToken(secret []byte, claims Claims, duration time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(duration).Unix()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken parses and validates a token string and returns its claims.
func ValidateToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}
	return claims, nil
}
