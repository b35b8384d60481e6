// Package session holds the portal's authenticated identity: token decoding,
// expiry checks and the replay-on-subscribe session stream.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when a token cannot be split or its payload decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrExpiredSession is returned when a token decodes but its exp has passed.
	ErrExpiredSession = errors.New("session expired")
)

// segmentParser only decodes base64url segments; signatures are never verified here.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Claims are the payload fields the portal reads from a token.
type Claims struct {
	UserID    int64    `json:"userId"`
	Email     string   `json:"sub"`
	FirstName string   `json:"firstName,omitempty"`
	LastName  string   `json:"lastName,omitempty"`
	Exp       *float64 `json:"exp,omitempty"`
}

// ExpiresAt bounds so huge exp values stay representable.
var (
	minExpiry = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	maxExpiry = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)
)

// ExpiresAt returns the expiry time and whether the token carried one.
// Values outside years 1 to 9999 are clamped.
func (c Claims) ExpiresAt() (time.Time, bool) {
	if c.Exp == nil {
		return time.Time{}, false
	}
	switch exp := *c.Exp; {
	case exp >= float64(maxExpiry.Unix()):
		return maxExpiry, true
	case exp <= float64(minExpiry.Unix()):
		return minExpiry, true
	default:
		sec, frac := math.Modf(exp)
		return time.Unix(int64(sec), int64(frac*1e9)), true
	}
}

// Decode reads the payload segment of a three-segment token.
// Every failure wraps ErrMalformedToken.
func Decode(token string) (Claims, error) {
	var claims Claims

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return claims, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return claims, fmt.Errorf("%w: payload encoding: %v", ErrMalformedToken, err)
	}

	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: payload json: %v", ErrMalformedToken, err)
	}

	return claims, nil
}

// IsExpired reports whether token is unusable at now. Tokens that fail to
// decode or carry no exp are expired; otherwise expiry is now >= exp.
func IsExpired(token string, now time.Time) bool {
	claims, err := Decode(token)
	if err != nil {
		return true
	}
	return claimsExpired(claims, now)
}

func claimsExpired(c Claims, now time.Time) bool {
	if c.Exp == nil {
		return true
	}
	return expiredAt(*c.Exp, now)
}

// expiredAt compares whole seconds of now against exp without converting exp to an integer.
func expiredAt(exp float64, now time.Time) bool {
	return float64(now.Unix()) >= exp
}

// Session is the identity derived from a currently valid token.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`

	exp float64
}

// FromToken derives a Session from token, failing with ErrMalformedToken or ErrExpiredSession.
func FromToken(token string, now time.Time) (*Session, error) {
	claims, err := Decode(token)
	if err != nil {
		return nil, err
	}
	if claimsExpired(claims, now) {
		return nil, ErrExpiredSession
	}
	exp, _ := claims.ExpiresAt()
	return &Session{
		Token:     token,
		UserID:    claims.UserID,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		ExpiresAt: exp,
		exp:       *claims.Exp,
	}, nil
}

// Expired reports whether the token behind s has passed its exp at now.
// A nil Session is expired.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return expiredAt(s.exp, now)
}

// DisplayName is the greeting name: first name, else full name parts, else email.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	if s.FirstName != "" {
		return s.FirstName
	}
	if s.LastName != "" {
		return s.LastName
	}
	return s.Email
}

// Initials returns up to two upper-case initials for the avatar badge.
func (s *Session) Initials() string {
	if s == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range []string{s.FirstName, s.LastName} {
		if r := []rune(strings.TrimSpace(part)); len(r) > 0 {
			b.WriteString(strings.ToUpper(string(r[0])))
		}
	}
	if b.Len() == 0 && s.Email != "" {
		b.WriteString(strings.ToUpper(string([]rune(s.Email)[0])))
	}
	return b.String()
}
