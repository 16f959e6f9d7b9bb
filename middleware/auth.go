package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"ecoChallengeAPI/internal/apperr"
	"ecoChallengeAPI/internal/session"
)

type contextKey string

const SessionKey contextKey = "session"

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*session.Claims, error)
}

// SessionAuth validates the bearer token and stores its claims in the
// request context.
func SessionAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondWithError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				respondWithError(w, http.StatusUnauthorized, "Invalid authorization format. Use 'Bearer <token>'")
				return
			}

			claims, err := verifier.Verify(r.Context(), strings.TrimSpace(token))
			if err != nil {
				respondWithError(w, apperr.KindOf(err).HTTPStatus(), apperr.PublicMessage(err))
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession extracts the verified claims from context.
func GetSession(ctx context.Context) (*session.Claims, bool) {
	claims, ok := ctx.Value(SessionKey).(*session.Claims)
	return claims, ok && claims != nil
}

// WithSession is used by handler tests to bypass token parsing.
func WithSession(ctx context.Context, claims *session.Claims) context.Context {
	return context.WithValue(ctx, SessionKey, claims)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
