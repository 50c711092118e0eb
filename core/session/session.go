// Package session holds the authenticated administrator's state.
// A Session is passed explicitly to whatever needs it; between requests it
// travels in an HMAC-signed cookie.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
)

const DefaultCookieName = "admin_session"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	errInvalidSession     = errors.New("invalid session")
)

// Session is the authentication state of the dashboard.
type Session struct {
	Token    string `json:"token"` // server-issued bearer token
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Authenticator verifies credentials and returns a Session holding the server-issued token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (Session, error)
}

// Claims are the session cookie contents.
type Claims struct {
	jwt.StandardClaims
	Token    string `json:"tkn"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

type Manager struct {
	CookieName string

	issuer string
	secret []byte
	ttl    time.Duration
	secure bool
}

func NewManager(conf *core.Config) *Manager {
	return &Manager{
		CookieName: DefaultCookieName,
		issuer:     conf.AppName,
		secret:     []byte(conf.SecretKey),
		ttl:        conf.Server.SessionExpirationDelta,
		secure:     conf.Server.SecureCookies,
	}
}

// Login checks that both credentials are present and delegates verification to auth.
func (m *Manager) Login(ctx context.Context, auth Authenticator, username, password string) (Session, error) {
	username = core.CleanString(username)
	var flds []core.FieldError
	if username == "" {
		flds = append(flds, core.FieldError{Field: "username", Error: core.RequiredText})
	}
	if password == "" {
		flds = append(flds, core.FieldError{Field: "password", Error: core.RequiredText})
	}
	if flds != nil {
		return Session{}, core.NewValidationError(nil, flds...)
	}

	sess, err := auth.Login(ctx, username, password)
	if err != nil {
		return Session{}, err
	}
	if !sess.Authenticated() {
		return Session{}, ErrInvalidCredentials
	}
	if sess.Username == "" {
		sess.Username = username
	}
	return sess, nil
}

// Encode signs the session into a token string.
func (m *Manager) Encode(sess Session) (string, error) {
	now := jwt.TimeFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    m.issuer,
			Subject:   sess.UserID,
			ExpiresAt: now.Add(m.ttl).Unix(),
			IssuedAt:  now.Unix(),
		},
		Token:    sess.Token,
		Username: sess.Username,
		Role:     sess.Role,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing session")
	}
	return ss, nil
}

// Decode verifies and parses a token string produced by Encode.
func (m *Manager) Decode(raw string) (Session, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidSession
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid || claims.Issuer != m.issuer {
		return Session{}, errInvalidSession
	}
	return Session{
		Token:    claims.Token,
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}

// FromRequest returns the request's session; missing or invalid cookies yield an anonymous Session.
func (m *Manager) FromRequest(r *http.Request) Session {
	c, err := r.Cookie(m.CookieName)
	if err != nil || c.Value == "" {
		return Session{}
	}
	sess, err := m.Decode(c.Value)
	if err != nil {
		return Session{}
	}
	return sess
}

// Cookie returns the cookie persisting sess.
func (m *Manager) Cookie(sess Session) (*http.Cookie, error) {
	value, err := m.Encode(sess)
	if err != nil {
		return nil, err
	}
	return &http.Cookie{
		Name:     m.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// ClearCookie returns a cookie that removes the session from the browser.
// The token itself is not revoked.
func (m *Manager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
