package httpmw

import (
	"context"
	"net/http"

	"github.com/cwrk-planet/presence-service/internal/auth"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// Middleware rejects requests the Authenticator cannot resolve and stashes
// the identity in the request context.
func Middleware(authn auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := authn.Authenticate(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"missing or invalid bearer token"}`))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyIdentity, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func IdentityFromCtx(ctx context.Context) auth.Identity {
	if v := ctx.Value(ctxKeyIdentity); v != nil {
		if ident, ok := v.(auth.Identity); ok {
			return ident
		}
	}
	return auth.Identity{}
}
