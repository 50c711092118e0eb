package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "TEST : ", 0), &core.Config{Env: "test"})
	logger.Enable(false)

	sess := session.Session{Token: "secret-token", UserID: "admin-1", Username: "admin", Role: "admin"}
	logger.Info("administrator logged in", sess, map[string]interface{}{"path": "/login"})

	out := buf.String()
	assert.Contains(t, out, "administrator logged in")
	assert.Contains(t, out, "username:admin")
	assert.Contains(t, out, "path:/login")
	assert.NotContains(t, out, "secret-token")
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger := RollbarLogger{}
	sess := session.Session{Token: "t", UserID: "admin-1", Username: "admin"}
	extra := map[string]interface{}{"k": "v"}

	args := logger.prepare("msg", []interface{}{sess, extra, sess})
	assert.Equal(t, []interface{}{"msg", extra}, args, "sessions are not sent as extras")
}
