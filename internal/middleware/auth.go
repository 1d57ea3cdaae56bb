package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ppopeskul/wa-inbox/internal/api"
	"github.com/ppopeskul/wa-inbox/internal/auth"
)

const claimsKey contextKey = "claims"

// TokenValidator checks a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// BearerAuth guards operations the generated router marks with
// api.BearerAuthScopes. When required is false a missing token is let
// through, but a token that is present must still be valid.
func BearerAuth(validator TokenValidator, required bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Context().Value(api.BearerAuthScopes) == nil {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				unauthorized(w, r)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				unauthorized(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims returns the claims of an authenticated request, or nil.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	reject(w, r, http.StatusUnauthorized, "unauthorized", ErrorCodeUnauthorized, ErrorMessageUnauthorized)
}
