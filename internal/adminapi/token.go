package adminapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IssueToken mints a bearer token accepted by the admin surface's
// mutating routes, signed with the same secret the server verifies
// against (AdminAPIConfig.JWTSecret). Used by aeonsyncctl to generate
// an operator token without running a login flow.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    "aeonsyncd",
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
