package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims of an API token. ID carries the token id
// stored for the user, so a token stops resolving once that row is replaced
// or deleted.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Signer signs and verifies API tokens with HS256.
type Signer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewSigner returns a Signer. A zero ttl produces tokens without expiry.
func NewSigner(secret, issuer, audience string, ttl time.Duration) *Signer {
	return &Signer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Sign builds the token for a stored token row. Every claim is derived from
// the arguments, so signing the same row twice yields the same string.
func (s *Signer) Sign(userID uint, tokenID string, issuedAt time.Time) (string, error) {
	issuedAt = issuedAt.Truncate(time.Second)
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   fmt.Sprint(userID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token string and returns its claims.
func (s *Signer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == 0 || claims.ID == "" {
		return nil, errors.New("token is missing user or token id")
	}
	return claims, nil
}

// Expired reports whether a token row created at issuedAt is past its TTL.
func (s *Signer) Expired(issuedAt, now time.Time) bool {
	return s.ttl > 0 && !now.Before(issuedAt.Truncate(time.Second).Add(s.ttl))
}
