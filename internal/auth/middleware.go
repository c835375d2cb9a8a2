package auth

import (
	"net/http"
	"strings"

	"github.com/prime-apparel/backend/internal/shared"
)

// Middleware parses a Bearer token when present and attaches the caller
// identity to the request context. Requests without a token pass through
// unauthenticated; route groups enforce their own requirements.
func Middleware(tokens *JWTService, denylist *TokenDenylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tokens.ValidateAccessToken(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if revoked, err := denylist.IsRevoked(r.Context(), claims.ID); err != nil || revoked {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := claims.UserID()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := shared.ContextWithIdentity(r.Context(), shared.Identity{
				UserID: userID,
				Email:  claims.Email,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
