package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cwrk-planet/presence-service/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what the collaborators get to know about a connection's user.
type Identity struct {
	UserID   int64
	Username string
}

// Authenticator resolves a handshake request to an identity. An anonymous
// request yields domain.ErrAuthRequired; the channels decide how to reject.
type Authenticator interface {
	Authenticate(r *http.Request) (Identity, error)
}

// JWT authenticates via an HS256 bearer token carried in the Authorization
// header, a "token" query param, or a "token" cookie (browsers cannot set
// headers on a websocket handshake). The user id rides in "sub", the
// username in "name".
type JWT struct {
	secret []byte
}

func NewJWT(secret []byte) *JWT {
	return &JWT{secret: secret}
}

func (a *JWT) Authenticate(r *http.Request) (Identity, error) {
	raw := tokenFromRequest(r)
	if raw == "" {
		return Identity{}, domain.ErrAuthRequired
	}

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return Identity{}, fmt.Errorf("%w: invalid token", domain.ErrAuthRequired)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("%w: unexpected claims", domain.ErrAuthRequired)
	}

	sub, _ := claims["sub"].(string)
	uid, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || uid <= 0 {
		return Identity{}, fmt.Errorf("%w: bad subject", domain.ErrAuthRequired)
	}

	name, _ := claims["name"].(string)
	return Identity{UserID: uid, Username: name}, nil
}

func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	if tok := strings.TrimSpace(strings.TrimPrefix(r.URL.Query().Get("token"), "Bearer ")); tok != "" {
		return tok
	}
	if c, err := r.Cookie("token"); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
