package httpmw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cwrk-planet/presence-service/internal/auth"
	"github.com/cwrk-planet/presence-service/internal/domain"
)

type stubAuthn struct {
	ident auth.Identity
	err   error
}

func (s stubAuthn) Authenticate(_ *http.Request) (auth.Identity, error) {
	return s.ident, s.err
}

func TestMiddleware_RejectsAnonymous(t *testing.T) {
	mw := Middleware(stubAuthn{err: domain.ErrAuthRequired})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run")
	})

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestMiddleware_StashesIdentity(t *testing.T) {
	want := auth.Identity{UserID: 7, Username: "ada"}
	mw := Middleware(stubAuthn{ident: want})

	var got auth.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = IdentityFromCtx(r.Context())
	})

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got != want {
		t.Fatalf("identity = %#v, want %#v", got, want)
	}
}

func TestIdentityFromCtx_EmptyWithoutMiddleware(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/rooms", nil)
	if got := IdentityFromCtx(r.Context()); got != (auth.Identity{}) {
		t.Fatalf("expected zero identity, got %#v", got)
	}
}
