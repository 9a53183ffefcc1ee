package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/linkbridge/shared/auth"
)

type callerClaimsKey struct{}

// NewJWTMiddleware rejects requests that do not carry a valid caller bearer token.
// Paths listed in exemptPaths are passed through untouched.
func NewJWTMiddleware(
	logger *zerolog.Logger,
	jwtAuth auth.JWTAuthenticator,
	secret string,
	exemptPaths []string,
) func(http.Handler) http.Handler {
	exemptMap := make(map[string]bool)
	for _, path := range exemptPaths {
		exemptMap[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exemptMap[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := extractAndValidateJWT(r, jwtAuth, secret)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("rejected caller token")
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), callerClaimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerClaimsFromContext returns the caller claims stored by the JWT middleware.
func CallerClaimsFromContext(ctx context.Context) (*auth.CallerClaims, bool) {
	claims, ok := ctx.Value(callerClaimsKey{}).(*auth.CallerClaims)
	return claims, ok
}

func extractAndValidateJWT(r *http.Request, jwtAuth auth.JWTAuthenticator, secret string) (*auth.CallerClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, errors.New("invalid authorization header format")
	}

	return jwtAuth.ValidateCallerToken(strings.TrimSpace(parts[1]), secret)
}
