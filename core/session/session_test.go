package session

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
)

func newTestManager(secret string) *Manager {
	conf := &core.Config{AppName: "Admin", SecretKey: secret}
	conf.Server.SessionExpirationDelta = time.Hour
	return NewManager(conf)
}

type authenticatorFunc func(ctx context.Context, username, password string) (Session, error)

func (f authenticatorFunc) Login(ctx context.Context, username, password string) (Session, error) {
	return f(ctx, username, password)
}

func TestManager_EncodeDecode(t *testing.T) {
	m := newTestManager("secret")
	sess := Session{Token: "srv-token", UserID: "42", Username: "admin", Role: "admin"}

	raw, err := m.Encode(sess)
	require.NoError(t, err)

	got, err := m.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, sess, got)
	assert.True(t, got.Authenticated())
}

func TestManager_Decode(t *testing.T) {
	m := newTestManager("secret")
	sess := Session{Token: "srv-token", Username: "admin"}

	valid, err := m.Encode(sess)
	require.NoError(t, err)
	foreign, err := newTestManager("other").Encode(sess)
	require.NoError(t, err)

	otherIssuer := newTestManager("secret")
	otherIssuer.issuer = "Someone"
	wrongIssuer, err := otherIssuer.Encode(sess)
	require.NoError(t, err)

	jwt.TimeFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := m.Encode(sess)
	jwt.TimeFunc = time.Now // reset
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: errInvalidSession},
		{name: "garbage", raw: "lol.lmao.mdr", wantErr: errInvalidSession},
		{name: "signed with another key", raw: foreign, wantErr: errInvalidSession},
		{name: "another issuer", raw: wrongIssuer, wantErr: errInvalidSession},
		{name: "expired", raw: expired, wantErr: errInvalidSession},
		{name: "valid", raw: valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Decode(tt.raw); err != tt.wantErr {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManager_FromRequest(t *testing.T) {
	m := newTestManager("secret")
	sess := Session{Token: "srv-token", Username: "admin"}

	req := httptest.NewRequest("GET", "/", nil)
	assert.False(t, m.FromRequest(req).Authenticated(), "no cookie")

	cookie, err := m.Cookie(sess)
	require.NoError(t, err)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
	req.AddCookie(cookie)
	assert.Equal(t, sess, m.FromRequest(req))

	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(m.ClearCookie())
	assert.False(t, m.FromRequest(req).Authenticated(), "cleared cookie")
}

func TestManager_Login(t *testing.T) {
	m := newTestManager("secret")
	var calls int
	auth := authenticatorFunc(func(_ context.Context, username, password string) (Session, error) {
		calls++
		if username == "admin" && password == "pwd" {
			return Session{Token: "srv-token", UserID: "1", Role: "admin"}, nil
		}
		return Session{}, ErrInvalidCredentials
	})

	tests := []struct {
		name      string
		username  string
		password  string
		wantErr   error
		wantCalls int
	}{
		{name: "missing credentials", wantCalls: 0},
		{name: "missing password", username: "admin", wantCalls: 0},
		{name: "wrong password", username: "admin", password: "lol", wantErr: ErrInvalidCredentials, wantCalls: 1},
		{name: "success", username: "  admin ", password: "pwd", wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls = 0
			sess, err := m.Login(context.Background(), auth, tt.username, tt.password)
			assert.Equal(t, tt.wantCalls, calls)

			switch {
			case tt.wantCalls == 0:
				vErr, ok := err.(*core.ValidationError)
				require.True(t, ok, "want *core.ValidationError, got %v", err)
				assert.Equal(t, core.RequiredText, vErr.FieldMap()["password"])
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, "srv-token", sess.Token)
				assert.Equal(t, "admin", sess.Username)
			}
		})
	}
}
