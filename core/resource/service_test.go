package resource_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/services/restapi"
)

// The newest-first display relies on the backend listing collections oldest first.
func TestBackendContract_OldestFirst(t *testing.T) {
	e := setup(t)
	tests := e.def(t, "tests")
	e.backend.Seed(tests, resource.Record{"title": "A"}, resource.Record{"title": "B"})

	_, err := e.svc.Create(context.Background(), adminSession, tests, resource.Payload{"title": "C"})
	require.NoError(t, err)

	stored := e.backend.Records(tests)
	require.Len(t, stored, 3)
	for i := 1; i < len(stored); i++ {
		assert.False(t, stored[i].CreatedAt().Before(stored[i-1].CreatedAt()), "record %d created before record %d", i, i-1)
	}

	recs := e.list(t, tests)
	assert.Equal(t, []string{"C", "B", "A"}, titles(recs))
}

func titles(recs []resource.Record) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.String("title"))
	}
	return out
}

func TestService_CRUD(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	insts := e.def(t, "institutions")

	// create -> list
	res, err := e.svc.Create(ctx, adminSession, insts, resource.Payload{"name": "GEL", "description": "Learning", "vision": "v"})
	require.NoError(t, err)
	require.NotEmpty(t, res.ID)
	assert.Equal(t, "Institution created successfully", res.Message)

	recs := e.list(t, insts)
	require.Len(t, recs, 1)
	assert.Equal(t, "GEL", recs[0].String("name"))
	assert.Equal(t, "Learning", recs[0].String("description"))

	// update -> get
	_, err = e.svc.Update(ctx, adminSession, insts, res.ID, resource.Payload{"name": "GEL 2"})
	require.NoError(t, err)
	rec, err := e.svc.Get(ctx, insts, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "GEL 2", rec.String("name"))
	assert.Equal(t, "Learning", rec.String("description"), "fields left out are unchanged")
	assert.Equal(t, "v", rec.String("vision"))

	// delete -> list
	_, err = e.svc.Delete(ctx, adminSession, insts, res.ID)
	require.NoError(t, err)
	assert.Empty(t, e.list(t, insts))

	// delete non-existent
	_, err = e.svc.Delete(ctx, adminSession, insts, res.ID)
	apiErr, ok := errors.Cause(err).(*restapi.APIError)
	require.True(t, ok, "want *restapi.APIError, got %v", err)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestService_WritesRequireToken(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	notifs := e.def(t, "notifications")
	anonymous := session.Session{}

	_, err := e.svc.Create(ctx, anonymous, notifs, resource.Payload{"title": "t", "message": "m"})
	assert.Equal(t, core.ErrNotAuthorized, err)
	_, err = e.svc.Update(ctx, anonymous, notifs, "1", resource.Payload{"title": "t"})
	assert.Equal(t, core.ErrNotAuthorized, err)
	_, err = e.svc.Delete(ctx, anonymous, notifs, "1")
	assert.Equal(t, core.ErrNotAuthorized, err)
	assert.Equal(t, "not authorized", err.Error())

	assert.Zero(t, e.backend.Calls(), "no network call without a token")
}

func TestService_ActionsFollowDefinition(t *testing.T) {
	e := setup(t)
	users := e.def(t, "users")

	_, err := e.svc.Create(context.Background(), adminSession, users, resource.Payload{"name": "x"})
	assert.Equal(t, resource.ErrActionForbidden, errors.Cause(err))
	assert.Zero(t, e.backend.Calls())
}

func TestService_ListErrors(t *testing.T) {
	e := setup(t)
	courses := e.def(t, "courses")

	e.backend.FailNext(http.StatusInternalServerError, `{"message":"db unavailable"}`)
	_, err := e.svc.List(context.Background(), courses)
	require.Error(t, err)
	assert.Equal(t, "db unavailable", err.Error())
}

func TestService_Singleton(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	contact := e.def(t, "contact")

	rec, err := e.svc.Single(ctx, contact)
	require.NoError(t, err)
	assert.Empty(t, rec.ID(), "nothing saved yet")
	assert.Empty(t, e.list(t, contact), "no blank row")

	seeded := e.backend.Seed(contact, resource.Record{"address": "Bengaluru", "phone": "+91 9876543210"})
	recs := e.list(t, contact)
	require.Len(t, recs, 1)
	assert.Equal(t, seeded[0].ID(), recs[0].ID())
	assert.Equal(t, "Bengaluru", recs[0].String("address"))
}

func TestService_Dashboard(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	users := e.def(t, "users")
	for _, name := range strings.Fields("ann bob cid dan eve fay") {
		e.backend.Seed(users, resource.Record{"name": name})
	}

	stats, err := e.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalUsers)

	acts, err := e.svc.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, acts, 5)
	assert.Equal(t, "fay", acts[0].User)
	assert.False(t, acts[0].At.IsZero())

	e.backend.FailNext(http.StatusInternalServerError, `{}`)
	stats, err = e.svc.Stats(ctx)
	assert.Error(t, err)
	assert.Equal(t, resource.Stats{}, stats, "zeros on failure")
}
