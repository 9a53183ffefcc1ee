package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCallerToken = errors.New("invalid caller token")
	ErrMissingCaller      = errors.New("caller token has no subject")
)

// CallerClaims identifies the front end (for example a chat bot) calling the link service.
type CallerClaims struct {
	jwt.RegisteredClaims
}

// Caller returns the calling service name carried in the subject claim.
func (c *CallerClaims) Caller() string {
	return c.Subject
}

// JWTAuthenticator issues and validates HS256 caller tokens.
type JWTAuthenticator struct {
	audience string
	issuer   string
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		audience: audience,
		issuer:   issuer,
	}
}

// IssueCallerToken signs a token for the named caller that expires after expiresIn.
func (a *JWTAuthenticator) IssueCallerToken(caller, secret string, expiresIn time.Duration) (string, error) {
	caller = strings.TrimSpace(caller)
	if caller == "" {
		return "", ErrMissingCaller
	}

	now := time.Now()
	claims := CallerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller,
			Issuer:    a.issuer,
			Audience:  jwt.ClaimStrings{a.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateCallerToken validates a caller token and returns its claims.
func (a *JWTAuthenticator) ValidateCallerToken(tokenString, secret string) (*CallerClaims, error) {
	claims := &CallerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCallerToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidCallerToken
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingCaller
	}

	return claims, nil
}
