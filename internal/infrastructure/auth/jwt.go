// Package auth issues and verifies the bearer tokens carried by back-office
// operators. Users are managed elsewhere; a token only names the actor and
// the role the ledger should grant them.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iho/backoffice/internal/domain"
)

// Issuer is stamped on every token and required on verification.
const Issuer = "backoffice"

var signingMethod = jwt.SigningMethodHS256

// Claims names the actor behind a request.
type Claims struct {
	UserID int64       `json:"user_id"`
	Email  string      `json:"email,omitempty"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) User() *domain.User {
	return &domain.User{ID: c.UserID, Email: c.Email, Role: c.Role}
}

func (c *Claims) valid() bool {
	return c.UserID > 0 && c.Role.IsValid()
}

// JWTManager signs and checks HS256 tokens with a shared secret.
type JWTManager struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	m := &JWTManager{key: []byte(secretKey), ttl: tokenDuration, now: time.Now}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

// Generate signs a token for user. The CLI uses it to hand tokens to
// operators.
func (m *JWTManager) Generate(user *domain.User) (string, error) {
	issuedAt := m.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(m.ttl)),
		},
	}
	if !claims.valid() {
		return "", fmt.Errorf("generate token for user %d with role %q: not a ledger actor", user.ID, user.Role)
	}

	return jwt.NewWithClaims(signingMethod, claims).SignedString(m.key)
}

// Verify returns the claims of a token signed by this manager. Expired
// tokens yield domain.ErrExpiredToken; anything else wrong yields
// domain.ErrInvalidToken.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := m.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrExpiredToken
	case err != nil, !claims.valid():
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
