// Package session implements the admin login check and the signed session
// cookie that gates the admin API surface.
package session

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the session cookie the admin UI carries.
const CookieName = "admin_session"

// TTL is the fixed session lifetime. No rotation or revocation exists.
const TTL = 24 * time.Hour

// Gate validates admin credentials and issues/verifies session tokens.
// Tokens are HS256 JWTs carrying an expiry claim, so a client cannot mint
// or extend one without the signing secret.
type Gate struct {
	username string
	password string
	secret   []byte
	secure   bool
	now      func() time.Time
}

// NewGate builds a Gate for the configured admin credentials. secure controls
// the cookie's Secure attribute and should be true outside development.
func NewGate(username, password, secret string, secure bool) *Gate {
	return &Gate{
		username: username,
		password: password,
		secret:   []byte(secret),
		secure:   secure,
		now:      time.Now,
	}
}

// Login reports whether the submitted credentials match the configured admin
// pair. Comparison is constant-time.
func (g *Gate) Login(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	return userOK && passOK
}

// IssueCookie mints a fresh session cookie valid for TTL.
func (g *Gate) IssueCookie() (*http.Cookie, error) {
	token, err := g.token()
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Authenticated reports whether the request carries a valid, unexpired
// session cookie.
func (g *Gate) Authenticated(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return g.verify(c.Value)
}

func (g *Gate) token() (string, error) {
	now := g.now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

func (g *Gate) verify(tokenStr string) bool {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(g.now),
	)
	return err == nil && parsed.Valid
}
