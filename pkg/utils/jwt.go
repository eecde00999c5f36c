package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sharebox/sharebox/internal/models"
)

const sessionIssuer = "sharebox"

var ErrInvalidSession = errors.New("invalid session token")

var session = struct {
	secret []byte
	ttl    time.Duration
}{
	secret: []byte("change-me-in-production"),
	ttl:    24 * time.Hour,
}

// Claims identify a user by subject only. Profile fields such as email or
// name are optional on User and are never embedded.
type Claims struct {
	Role models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject back into a user id.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// ConfigureJWT sets the signing secret and session lifetime. Empty or
// non-positive values leave the current setting in place.
func ConfigureJWT(secret string, expirationHours int) {
	if secret != "" {
		session.secret = []byte(secret)
	}
	if expirationHours > 0 {
		session.ttl = time.Duration(expirationHours) * time.Hour
	}
}

func GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(session.ttl)),
		},
	}).SignedString(session.secret)
}

// ValidateToken accepts only HS256 tokens from this issuer whose subject is
// a user id.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return session.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	return claims, nil
}
