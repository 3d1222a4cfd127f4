package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultClockSkew is the leeway applied to exp/nbf/iat checks.
const DefaultClockSkew = 2 * time.Minute

// JWTVerifier validates HS256 bearer tokens. The principal is the "sub" claim.
type JWTVerifier struct {
	key       []byte
	issuer    string
	clockSkew time.Duration
	timeFunc  func() time.Time
}

// NewJWTVerifier builds a verifier. An empty issuer disables the iss check.
func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	return &JWTVerifier{
		key:       []byte(secret),
		issuer:    issuer,
		clockSkew: DefaultClockSkew,
		timeFunc:  time.Now,
	}
}

// Verify extracts and validates the bearer token of r.
func (v *JWTVerifier) Verify(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingCredentials
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: malformed authorization header", ErrInvalidCredentials)
	}

	return v.ParseToken(strings.TrimSpace(token))
}

// ParseToken validates a raw token string and returns its subject.
func (v *JWTVerifier) ParseToken(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(v.timeFunc),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrInvalidCredentials)
	}
	return claims.Subject, nil
}

// JWTSigner issues tokens accepted by a JWTVerifier with the same secret.
type JWTSigner struct {
	key      []byte
	issuer   string
	lifetime time.Duration
	timeFunc func() time.Time
}

// NewJWTSigner builds a signer whose tokens expire after lifetime.
func NewJWTSigner(secret, issuer string, lifetime time.Duration) *JWTSigner {
	return &JWTSigner{
		key:      []byte(secret),
		issuer:   issuer,
		lifetime: lifetime,
		timeFunc: time.Now,
	}
}

// Issue returns a signed token whose subject is userID.
func (s *JWTSigner) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("cannot issue a token for an empty user id")
	}

	now := s.timeFunc()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
