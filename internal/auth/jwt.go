package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for malformed or badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token signature is valid but the
	// token is past its expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Claims are shared by session tokens (admin id, role) and invitation
// tokens (user id + event id + recipient email).
type Claims struct {
	Subject int64  `json:"sub_id"`
	Role    string `json:"role,omitempty"`
	EventID int64  `json:"event_id,omitempty"`
	Email   string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed, time-limited tokens. No
// revocation list is consulted: invalidation is modeled by flags on the
// owning rows, so callers must re-check those flags after Verify.
type TokenService struct {
	secret        []byte
	sessionTTL    time.Duration
	invitationTTL time.Duration
}

// NewTokenService creates a token service signing with the given secret.
func NewTokenService(secret string, sessionExpireHours, invitationExpireDays int) *TokenService {
	return &TokenService{
		secret:        []byte(secret),
		sessionTTL:    time.Duration(sessionExpireHours) * time.Hour,
		invitationTTL: time.Duration(invitationExpireDays) * 24 * time.Hour,
	}
}

// IssueSession creates a session token for an admin.
func (s *TokenService) IssueSession(adminID int64) (string, error) {
	return s.sign(Claims{Subject: adminID, Role: "admin"}, s.sessionTTL)
}

// IssueInvitation creates an invitation token scoped to (user, event).
func (s *TokenService) IssueInvitation(userID, eventID int64, email string) (string, error) {
	return s.sign(Claims{Subject: userID, EventID: eventID, Email: email}, s.invitationTTL)
}

func (s *TokenService) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Decode extracts claims without verifying the signature. The acceptance
// workflow uses it to locate the join row before re-verifying the stored
// invitation token.
func (s *TokenService) Decode(tokenString string) (*Claims, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, &Claims{})
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
