package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/fintrack/internal/domain"
)

const (
	// Issuer is stamped on every token and required on verification.
	Issuer = "fintrack"

	clockSkew = 5 * time.Second
)

// Both match domain.ErrUnauthenticated.
var (
	ErrInvalidToken = fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	ErrExpiredToken = fmt.Errorf("%w: token expired", domain.ErrUnauthenticated)
)

// Claims names the ledger owner a token acts for. OwnerID duplicates Subject
// so clients can read it without knowing registered claim names.
type Claims struct {
	OwnerID string `json:"owner_id"`
	jwt.RegisteredClaims
}

// JWTManager issues and checks HS256 bearer tokens. The signing key is shared
// between the server and the CLI token command.
type JWTManager struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTManager(secret string, ttl time.Duration) *JWTManager {
	m := &JWTManager{
		key: []byte(secret),
		ttl: ttl,
		now: time.Now,
	}

	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)

	return m
}

// Generate issues a token for ownerID valid for the manager's ttl.
func (m *JWTManager) Generate(ownerID string) (string, error) {
	if ownerID == "" {
		return "", domain.ErrMissingOwner
	}

	issued := m.now()
	claims := Claims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   ownerID,
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

// Verify returns the claims of a valid token. Any failure is reported as
// ErrExpiredToken or ErrInvalidToken; parser details are not exposed to
// callers.
func (m *JWTManager) Verify(raw string) (*Claims, error) {
	claims := &Claims{}

	_, err := m.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	})

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.OwnerID == "" || claims.OwnerID != claims.Subject:
		return nil, ErrInvalidToken
	}

	return claims, nil
}
