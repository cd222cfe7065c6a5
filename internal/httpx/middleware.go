package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/thangabali/suitcase-market/internal/accounts"
	"github.com/thangabali/suitcase-market/internal/auth"
)

type ctxKey int

const ctxKeyAccount ctxKey = 0

// CallerFrom returns the authenticated account a Protect-wrapped handler runs
// for. The bool is false only if the middleware was not applied.
func CallerFrom(ctx context.Context) (*accounts.Account, bool) {
	a, ok := ctx.Value(ctxKeyAccount).(*accounts.Account)
	return a, ok
}

type AuthMiddleware struct {
	Tokens   *auth.Tokens
	Accounts accounts.Store
}

// Protect resolves the bearer token to a live account and requires one of
// the given roles. Unverified accounts never pass, whatever the token says.
func (m *AuthMiddleware) Protect(roles ...accounts.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
				return
			}
			claims, err := m.Tokens.Parse(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}
			a, err := m.Accounts.GetByID(r.Context(), claims.AccountID)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}
			if !a.IsVerified {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "account not verified"})
				return
			}
			allowed := false
			for _, role := range roles {
				if a.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "role not authorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyAccount, a)))
		})
	}
}
