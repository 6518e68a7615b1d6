package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator guards the preview server's routes with a bootstrap
// bearer token (bcrypt-hashed at startup) and mints short-lived JWT
// session tokens so a browser client doesn't have to keep resending the
// raw secret on every request.
type Authenticator struct {
	tokenHash []byte
	secret    []byte
	ttl       time.Duration
}

// NewAuthenticator hashes token with bcrypt at startup. jwtSecret signs
// the session tokens minted by POST /auth.
func NewAuthenticator(token string, jwtSecret []byte, ttl time.Duration) (*Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash bootstrap token: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Authenticator{tokenHash: hash, secret: jwtSecret, ttl: ttl}, nil
}

// NewAuthenticatorFromHash builds an Authenticator from an
// already-hashed bootstrap token, as loaded from serve.token-hash in
// configuration.
func NewAuthenticatorFromHash(hash string, jwtSecret []byte, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Authenticator{tokenHash: []byte(hash), secret: jwtSecret, ttl: ttl}
}

// Authenticate checks the bootstrap bearer token and, on success, mints
// a JWT session token.
func (a *Authenticator) Authenticate(token string) (string, error) {
	if bcrypt.CompareHashAndPassword(a.tokenHash, []byte(token)) != nil {
		return "", fmt.Errorf("invalid token")
	}

	now := time.Now()
	claims := jwt.MapClaims{"iat": now.Unix(), "exp": now.Add(a.ttl).Unix()}
	jwtTok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jwtTok.SignedString(a.secret)
}

// Middleware requires a valid session JWT (minted by Authenticate) on
// the Authorization header of every request it wraps.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenStr := strings.TrimPrefix(header, "Bearer ")
		if tokenStr == header || tokenStr == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if t.Method.Alg() != "HS256" {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "invalid session token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
