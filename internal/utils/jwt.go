package utils // package utils provides helper functions for token creation and hashing

import (
	"regexp" // compiled pattern for email validation
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are sent both as an HttpOnly
// cookie and in the JSON login response for clients that prefer the
// Authorization header.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID, email and role, and a TTL in hours.  The JWT
// includes standard claims: subject (sub), email, role, expiration (exp)
// and issued at (iat).
func NewAccessToken(secret string, userID uint64, email, role string, ttlHours int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// emailPattern is deliberately loose: one @ with something around it and a
// dot in the domain.  Real validation happens when the mail bounces.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
