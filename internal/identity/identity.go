// Package identity manages the opaque visitor token that links a browser to
// its registration. The token is trust-by-possession only: it carries no
// signature and no server-side session, and this package knows nothing about
// registration semantics.
package identity

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatsby-party/backend/config"
)

const tokenPrefix = "gatsby-user"

// Manager issues and clears the visitor identity cookie.
type Manager struct {
	cookieName string
	maxAge     int
	secure     bool
}

// NewManager creates a cookie-backed identity manager.
func NewManager(cfg config.IdentityConfig) *Manager {
	return &Manager{
		cookieName: cfg.CookieName,
		maxAge:     cfg.CookieMaxAge,
		secure:     cfg.CookieSecure,
	}
}

// Ensure returns the request's identity token, minting and setting a cookie
// when none is present. The returned token is never empty.
func (m *Manager) Ensure(c *gin.Context) string {
	if token, err := c.Cookie(m.cookieName); err == nil && token != "" {
		return token
	}
	token := Mint()
	m.set(c, token, m.maxAge)
	return token
}

// Token returns the identity token already carried by the request, or ""
// when the visitor has no cookie yet.
func (m *Manager) Token(c *gin.Context) string {
	token, err := c.Cookie(m.cookieName)
	if err != nil {
		return ""
	}
	return token
}

// Refresh re-sets the cookie for token, extending its expiry. Used when the
// client supplied the token in the request body rather than the cookie.
func (m *Manager) Refresh(c *gin.Context, token string) {
	m.set(c, token, m.maxAge)
}

// Clear expires the identity cookie. Called after a successful withdraw so a
// later visit starts with a fresh identity.
func (m *Manager) Clear(c *gin.Context) {
	m.set(c, "", -1)
}

func (m *Manager) set(c *gin.Context, token string, maxAge int) {
	c.SetCookie(m.cookieName, token, maxAge, "/", "", m.secure, false)
}

// Mint generates a new identity token: a fixed prefix, the current time in
// milliseconds, and nine base36 characters of crypto randomness. Collisions
// would need the same millisecond and the same random suffix. Mint never
// fails: if the system randomness source is unreadable the suffix falls back
// to the nanosecond clock, trading collision resistance for availability.
func Mint() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		binary.BigEndian.PutUint64(b[:], uint64(time.Now().UnixNano()))
	}
	n := binary.BigEndian.Uint64(b[:])
	suffix := strconv.FormatUint(n, 36)
	if len(suffix) > 9 {
		suffix = suffix[:9]
	}
	for len(suffix) < 9 {
		suffix = "0" + suffix
	}
	return tokenPrefix + "-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + suffix
}

// Valid reports whether token is plausibly a minted identity token. The store
// treats tokens as opaque; this only rejects empty or absurdly long values.
func Valid(token string) bool {
	if token == "" || len(token) > 128 {
		return false
	}
	return !strings.ContainsAny(token, " \t\r\n")
}
