package common

import (
	"errors"
	"fmt"
	"time"

	"airtraffic/statboard/internal/auth"
	"airtraffic/statboard/internal/constants"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrSignerDisabled = errors.New("token signing is not configured")
	ErrInvalidToken   = errors.New("invalid token")
)

// TokenSigner issues and validates HS256 admin tokens.
type TokenSigner struct {
	secretKey []byte
}

// NewTokenSigner creates a signer. An empty secret disables it.
func NewTokenSigner(secretKey []byte) *TokenSigner {
	return &TokenSigner{secretKey: secretKey}
}

// Enabled reports whether a secret is configured.
func (s *TokenSigner) Enabled() bool {
	return s != nil && len(s.secretKey) > 0
}

// Issue signs a token for subject with role, valid for ttl.
func (s *TokenSigner) Issue(subject string, role constants.Role, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrSignerDisabled
	}
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role.String(),
		"jti":  uuid.New().String(),
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Validate parses tokenString and returns its claims. Expiry is enforced
// by the parser.
func (s *TokenSigner) Validate(tokenString string) (*auth.JWTClaims, error) {
	if !s.Enabled() {
		return nil, ErrSignerDisabled
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	subject, ok := (*claims)["sub"].(string)
	if !ok || subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}
	role, ok := (*claims)["role"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing role claim", ErrInvalidToken)
	}
	tokenID, _ := (*claims)["jti"].(string)

	return &auth.JWTClaims{
		Subject:   subject,
		RoleValue: constants.Role(role),
		JTI:       tokenID,
	}, nil
}
