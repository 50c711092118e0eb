package resource_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/services/restapi"
	testutil "github.com/amitkumarsingh01/GlobalEdutech-Admin/tests"
)

var adminSession = session.Session{Token: testutil.AdminToken, UserID: "admin-1", Username: "admin", Role: "admin"}

type env struct {
	reg     *resource.Registry
	backend *testutil.Backend
	svc     *resource.Service
	v       *resource.Validator
}

func setup(t *testing.T) *env {
	reg := resource.DefaultRegistry()
	backend := testutil.NewBackend(t, reg)
	client := restapi.New(backend.URL(), "/admin/login", backend.Server.Client(), nil)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	return &env{
		reg:     reg,
		backend: backend,
		svc:     resource.NewService(client),
		v:       resource.NewValidator(validate, translator),
	}
}

func (e *env) def(t *testing.T, name string) *resource.Definition {
	def, err := e.reg.Lookup(name)
	require.NoError(t, err)
	return def
}

func (e *env) list(t *testing.T, def *resource.Definition) []resource.Record {
	recs, err := e.svc.List(context.Background(), def)
	require.NoError(t, err)
	return recs
}
