package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/services/restapi"
	testutil "github.com/amitkumarsingh01/GlobalEdutech-Admin/tests"
)

func setup(t *testing.T) (*commandLine, *testutil.Backend, *bytes.Buffer) {
	reg := resource.DefaultRegistry()
	backend := testutil.NewBackend(t, reg)
	client := restapi.New(backend.URL(), "/admin/login", backend.Server.Client(), nil)

	var out bytes.Buffer
	return &commandLine{
		reg:  reg,
		svc:  resource.NewService(client),
		auth: client,
		out:  &out,
	}, backend, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
	extra      interface{}
}

func runCLITests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
			}
			assert.Contains(t, out.String(), tt.wantOut)
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	cli, _, out := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: "Usage:"},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"login"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"login", "-username", testutil.AdminUsername}, wantErr: errHelp},
		{name: "invalid credentials", args: []string{"login", "-username", testutil.AdminUsername}, extra: extra{pwd: "lol"}, wantErr: session.ErrInvalidCredentials},
		{name: "success", args: []string{"login", "-username", testutil.AdminUsername}, extra: extra{pwd: testutil.AdminPassword}, wantOut: "token: " + testutil.AdminToken},
	}
	for i := range tests {
		tt := tests[i]
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}
		runCLITests(t, cli, out, tests[i:i+1])
	}
}

func Test_commandLine_list(t *testing.T) {
	cli, backend, out := setup(t)
	courses, err := cli.reg.Lookup("courses")
	require.NoError(t, err)
	backend.Seed(courses,
		resource.Record{"title": "Physics", "category": "science"},
		resource.Record{"title": "Accounts", "category": "commerce"},
	)

	tests := []cliTest{
		{name: "no resource", args: []string{"list"}, wantErr: errHelp},
		{name: "unknown resource", args: []string{"list", "-resource", "cours"}, wantErrStr: "did you mean courses"},
		{name: "all", args: []string{"list", "-resource", "courses"}, wantOut: "TITLE"},
		{name: "search", args: []string{"list", "-resource", "Courses", "-search", "SCI"}, wantOut: "Physics"},
		{name: "nothing", args: []string{"list", "-resource", "materials"}, wantOut: "No Materials found."},
		{name: "empty singleton", args: []string{"list", "-resource", "contact"}, wantOut: "No Contact found."},
	}
	runCLITests(t, cli, out, tests)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "list", "-resource", "courses"}))
	assert.True(t, strings.Index(out.String(), "Accounts") < strings.Index(out.String(), "Physics"), "newest first")

	backend.FailNext(500, `{"message":"db unavailable"}`)
	err = cli.run([]string{"admin", "list", "-resource", "courses"})
	require.Error(t, err)
	assert.Equal(t, "db unavailable", err.Error())
}

func Test_commandLine_delete(t *testing.T) {
	cli, backend, out := setup(t)
	insts, err := cli.reg.Lookup("institutions")
	require.NoError(t, err)
	inst := backend.Seed(insts, resource.Record{"name": "GEL", "description": "Learning"})[0]

	tests := []cliTest{
		{name: "missing token", args: []string{"delete", "-resource", "institutions", "-id", inst.ID()}, wantErr: errHelp},
		{name: "not available", args: []string{"delete", "-resource", "contact", "-id", "1", "-token", "t"}, wantErr: resource.ErrActionForbidden},
		{name: "rejected token", args: []string{"delete", "-resource", "institutions", "-id", inst.ID(), "-token", "lol"}, wantErrStr: "Not authenticated"},
		{name: "success", args: []string{"delete", "-resource", "institutions", "-id", inst.ID(), "-token", testutil.AdminToken}, wantOut: "Institution deleted successfully"},
		{name: "not found", args: []string{"delete", "-resource", "institutions", "-id", inst.ID(), "-token", testutil.AdminToken}, wantErrStr: "Institution not found"},
	}
	runCLITests(t, cli, out, tests)
	assert.Empty(t, backend.Records(insts))
}

func Test_commandLine_health(t *testing.T) {
	cli, backend, out := setup(t)

	runCLITests(t, cli, out, []cliTest{
		{name: "healthy", args: []string{"health"}, wantOut: "backend: healthy"},
	})

	backend.Server.Close()
	err := cli.run([]string{"admin", "health"})
	require.Error(t, err)
	assert.IsType(t, &restapi.TransportError{}, errors.Cause(err))
}

func Test_commandLine_notAuthorized(t *testing.T) {
	cli, backend, _ := setup(t)
	err := cli.delete(context.Background(), "courses", "1", "")
	assert.Equal(t, core.ErrNotAuthorized, errors.Cause(err))
	assert.Zero(t, backend.Calls())
}
