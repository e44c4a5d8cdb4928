package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"recipebox/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	issuer   = "recipebox-api"
	audience = "recipebox-client"
)

// ErrInvalid is returned when a token is malformed, forged, expired or revoked.
var ErrInvalid = errors.New("invalid session")

// Session is a resolved, live login session.
type Session struct {
	ID     string
	UserID uint
}

// Options configures a Manager.
type Options struct {
	Secret       []byte
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

// Manager signs session tokens and keeps their records in a Store.
type Manager struct {
	store Store
	opts  Options
	now   func() time.Time
}

// NewManager returns a Manager persisting sessions in store.
func NewManager(store Store, opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	return &Manager{store: store, opts: opts, now: time.Now}
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.opts.CookieName
}

// Store returns the underlying session store.
func (m *Manager) Store() Store {
	return m.store
}

// Issue creates a session for userID and returns its signed token and expiry.
func (m *Manager) Issue(ctx context.Context, userID uint) (string, time.Time, error) {
	id := uuid.NewString()
	now := m.now()
	expires := now.Add(m.opts.TTL)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ID:        id,
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.opts.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}

	if err := m.store.Save(ctx, id, userID, m.opts.TTL); err != nil {
		return "", time.Time{}, fmt.Errorf("save session: %w", err)
	}
	observability.ActiveSessions.Inc()

	return token, expires, nil
}

// Resolve validates token and returns the live session it names. Any token
// problem yields ErrInvalid; store failures are returned as-is.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalid
	}

	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return m.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalid
	}

	subject, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || subject == 0 {
		return nil, ErrInvalid
	}

	stored, err := m.store.Load(ctx, claims.ID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if uint64(stored) != subject {
		return nil, ErrInvalid
	}

	return &Session{ID: claims.ID, UserID: stored}, nil
}

// Revoke deletes the session record so its token no longer resolves.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	observability.ActiveSessions.Dec()
	return nil
}

// SetCookie attaches the session token to the response.
func (m *Manager) SetCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.opts.TTL.Seconds()),
		Secure:   m.opts.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie instructs the client to drop the session cookie.
func (m *Manager) ClearCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   m.opts.CookieSecure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Token returns the session token carried by the request, if any.
func (m *Manager) Token(c *fiber.Ctx) string {
	return c.Cookies(m.opts.CookieName)
}
