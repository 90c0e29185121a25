// Package auth is the admin session gate: one shared secret, one signed
// cookie.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	appErrors "github.com/unclebandit/mailto-campaigns/internal/errors"
)

const (
	CookieName = "admin_auth"
	subject    = "admin"
	LoginPath  = "/admin/login"
)

// Options come from configuration; nothing is read from the environment here.
type Options struct {
	Password       string
	PasswordBcrypt string
	Secret         string
	TTL            time.Duration
	Secure         bool
}

type Gate struct {
	password []byte
	hash     []byte
	secret   []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time
}

// Claims is the session marker payload.
type Claims struct {
	jwt.RegisteredClaims
}

// NewGate fails without any admin secret. An empty signing secret is replaced
// by a random one, so sessions do not survive a restart.
func NewGate(opts Options, log logrus.FieldLogger) (*Gate, error) {
	if opts.Password == "" && opts.PasswordBcrypt == "" {
		return nil, errors.New("an admin password or bcrypt hash is required")
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}

	secret := []byte(opts.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		if log != nil {
			log.Warn("SESSION_SECRET not set; using a per-process secret")
		}
	}

	return &Gate{
		password: []byte(opts.Password),
		hash:     []byte(opts.PasswordBcrypt),
		secret:   secret,
		ttl:      opts.TTL,
		secure:   opts.Secure,
		now:      time.Now,
	}, nil
}

func (g *Gate) TTL() time.Duration { return g.ttl }

// Login checks the password and issues a signed session token.
func (g *Gate) Login(password string) (string, error) {
	if !g.checkPassword(password) {
		return "", appErrors.ErrUnauthorized
	}
	return g.issue()
}

func (g *Gate) checkPassword(password string) bool {
	if password == "" {
		return false
	}
	if len(g.hash) > 0 {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), g.password) == 1
}

func (g *Gate) issue() (string, error) {
	now := g.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}

// Validate accepts only an unexpired admin token signed with this gate's
// secret.
func (g *Gate) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, appErrors.ErrUnauthorized
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.secret, nil
	},
		jwt.WithTimeFunc(g.now),
		jwt.WithSubject(subject),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, appErrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, appErrors.ErrUnauthorized
	}
	return claims, nil
}

// Verify checks the request's session cookie.
func (g *Gate) Verify(r *http.Request) error {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return appErrors.ErrUnauthorized
	}
	_, err = g.Validate(c.Value)
	return err
}

func (g *Gate) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(g.ttl.Seconds()),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the marker immediately.
func (g *Gate) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   g.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireAdmin rejects API calls with a JSON 401 and sends page requests to
// the login form.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := g.Verify(r); err != nil {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "unauthorized"})
				return
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsAdmin reports whether the request carries a valid session.
func (g *Gate) IsAdmin(r *http.Request) bool {
	return g.Verify(r) == nil
}
