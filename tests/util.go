// Package testutil provides an in-memory fake of the platform's REST backend.
// Collections are served oldest first, like the real backend.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
)

const (
	AdminUsername = "admin"
	AdminPassword = "admin@123"
	AdminToken    = "test-admin-token"
)

// RecordedRequest is a request received by the Backend.
type RecordedRequest struct {
	Method        string
	Path          string
	ContentType   string
	Authorization string
	Fields        map[string]interface{} // JSON body or multipart values
	Files         map[string]string      // multipart file field -> filename
}

// Multipart reports whether the request body was multipart/form-data.
func (r RecordedRequest) Multipart() bool {
	return strings.HasPrefix(r.ContentType, echo.MIMEMultipartForm)
}

type failure struct {
	status int
	body   string
}

// Backend is a fake REST backend serving every collection of a resource.Registry.
type Backend struct {
	Server *httptest.Server
	NewID  func() string

	mu       sync.Mutex
	reg      *resource.Registry
	byPath   map[string]*resource.Definition
	data     map[string][]resource.Record // collection path -> records, oldest first
	requests []RecordedRequest
	failures []failure
	clock    time.Time
}

// NewBackend starts a fake backend, closed at the end of the test.
func NewBackend(t *testing.T, reg *resource.Registry) *Backend {
	b := &Backend{
		NewID:  func() string { return uuid.New().String() },
		reg:    reg,
		byPath: make(map[string]*resource.Definition),
		data:   make(map[string][]resource.Record),
		clock:  time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	for _, def := range reg.All() {
		b.byPath[def.CollectionPath()] = def
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(b.record)
	e.POST("/admin/login", b.login)
	e.GET("/health", b.health)
	e.GET("/dashboard/stats", b.stats)
	e.GET("/dashboard/recent-activities", b.recent)
	e.GET("/:resource", b.list)
	e.POST("/:resource", b.create)
	e.GET("/:resource/:id", b.get)
	e.PUT("/:resource/:id", b.update)
	e.DELETE("/:resource/:id", b.delete)

	b.Server = httptest.NewServer(e)
	t.Cleanup(b.Server.Close)
	return b
}

func (b *Backend) URL() string { return b.Server.URL }

// Seed appends records to def's collection, assigning ids and increasing timestamps.
func (b *Backend) Seed(def *resource.Definition, recs ...resource.Record) []resource.Record {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]resource.Record, 0, len(recs))
	for _, rec := range recs {
		stored := b.newRecord()
		for k, v := range rec {
			stored[k] = v
		}
		if def.Singleton {
			b.data[def.CollectionPath()] = []resource.Record{stored}
		} else {
			b.data[def.CollectionPath()] = append(b.data[def.CollectionPath()], stored)
		}
		out = append(out, stored)
	}
	return out
}

// Records returns a copy of def's collection, oldest first.
func (b *Backend) Records(def *resource.Definition) []resource.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]resource.Record(nil), b.data[def.CollectionPath()]...)
}

// FailNext makes the next request fail with status and a raw body.
func (b *Backend) FailNext(status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, failure{status: status, body: body})
}

// Requests returns the requests received so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// Calls returns the number of requests received so far.
func (b *Backend) Calls() int {
	return len(b.Requests())
}

// LastRequest returns the most recent request.
func (b *Backend) LastRequest() RecordedRequest {
	reqs := b.Requests()
	if len(reqs) == 0 {
		return RecordedRequest{}
	}
	return reqs[len(reqs)-1]
}

func (b *Backend) newRecord() resource.Record {
	b.clock = b.clock.Add(time.Minute)
	ts := b.clock.Format(time.RFC3339)
	return resource.Record{"_id": b.NewID(), "created_at": ts, "updated_at": ts}
}

// record captures the request, then serves a queued failure if any.
func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		req := ctx.Request()
		rr := RecordedRequest{
			Method:        req.Method,
			Path:          req.URL.Path,
			ContentType:   req.Header.Get(echo.HeaderContentType),
			Authorization: req.Header.Get(echo.HeaderAuthorization),
			Fields:        make(map[string]interface{}),
			Files:         make(map[string]string),
		}
		switch {
		case rr.Multipart():
			if form, err := ctx.MultipartForm(); err == nil {
				for k, vs := range form.Value {
					rr.Fields[k] = vs[0]
				}
				for k, fhs := range form.File {
					rr.Files[k] = fhs[0].Filename
				}
			}
		case strings.HasPrefix(rr.ContentType, echo.MIMEApplicationJSON):
			_ = json.NewDecoder(req.Body).Decode(&rr.Fields)
		}
		ctx.Set("recorded", rr)

		b.mu.Lock()
		b.requests = append(b.requests, rr)
		var fail *failure
		if len(b.failures) > 0 {
			fail = &b.failures[0]
			b.failures = b.failures[1:]
		}
		b.mu.Unlock()

		if fail != nil {
			return ctx.Blob(fail.status, echo.MIMEApplicationJSONCharsetUTF8, []byte(fail.body))
		}
		return next(ctx)
	}
}

func message(ctx echo.Context, status int, msg string) error {
	return ctx.JSON(status, echo.Map{"message": msg})
}

func (b *Backend) definition(ctx echo.Context) (*resource.Definition, error) {
	def, ok := b.byPath[ctx.Param("resource")]
	if !ok {
		return nil, message(ctx, http.StatusNotFound, "Not Found")
	}
	return def, nil
}

func authorized(ctx echo.Context) bool {
	return ctx.Request().Header.Get(echo.HeaderAuthorization) == "Bearer "+AdminToken
}

func (b *Backend) login(ctx echo.Context) error {
	rr := ctx.Get("recorded").(RecordedRequest)
	if rr.Fields["username"] != AdminUsername || rr.Fields["password"] != AdminPassword {
		return message(ctx, http.StatusUnauthorized, "Invalid credentials")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user_id": "admin-1",
		"token":   AdminToken,
		"user":    echo.Map{"_id": "admin-1", "username": AdminUsername, "role": "admin"},
	})
}

func (b *Backend) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{"status": "healthy"})
}

func (b *Backend) stats(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ctx.JSON(http.StatusOK, echo.Map{
		"total_users":       len(b.data["users"]),
		"total_courses":     len(b.data["courses"]),
		"total_tests":       len(b.data["tests"]),
		"total_materials":   len(b.data["materials"]),
		"total_enrollments": 0,
		"timestamp":         b.clock.Format(time.RFC3339),
	})
}

func (b *Backend) recent(ctx echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	users := b.data["users"]
	recent := make([]resource.Record, 0, len(users))
	for i := len(users) - 1; i >= 0; i-- {
		recent = append(recent, users[i])
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"recent_users":         recent,
		"recent_enrollments":   []interface{}{},
		"recent_test_attempts": []interface{}{},
	})
}

func (b *Backend) list(ctx echo.Context) error {
	def, err := b.definition(ctx)
	if def == nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	recs := b.data[def.CollectionPath()]
	if def.Singleton {
		if len(recs) == 0 {
			return ctx.JSON(http.StatusOK, echo.Map{})
		}
		return ctx.JSON(http.StatusOK, echo.Map{def.SingularKey: recs[0]})
	}
	if recs == nil {
		recs = []resource.Record{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{def.PluralKey: recs})
}

func (b *Backend) find(def *resource.Definition, id string) int {
	for i, rec := range b.data[def.CollectionPath()] {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

func (b *Backend) get(ctx echo.Context) error {
	def, err := b.definition(ctx)
	if def == nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.find(def, ctx.Param("id"))
	if i < 0 {
		return message(ctx, http.StatusNotFound, fmt.Sprintf("%s not found", def.Singular))
	}
	return ctx.JSON(http.StatusOK, echo.Map{def.SingularKey: b.data[def.CollectionPath()][i]})
}

func (b *Backend) create(ctx echo.Context) error {
	def, err := b.definition(ctx)
	if def == nil {
		return err
	}
	if !authorized(ctx) {
		return message(ctx, http.StatusUnauthorized, "Not authenticated")
	}
	rr := ctx.Get("recorded").(RecordedRequest)

	b.mu.Lock()
	defer b.mu.Unlock()

	rec := b.newRecord()
	for k, v := range rr.Fields {
		rec[k] = v
	}
	for field, filename := range rr.Files {
		if att, ok := def.Attachment(field); ok {
			rec[att.Ref] = fmt.Sprintf("uploads/%s/%s", def.CollectionPath(), filename)
		}
	}
	b.data[def.CollectionPath()] = append(b.data[def.CollectionPath()], rec)
	return ctx.JSON(http.StatusCreated, echo.Map{
		"message": fmt.Sprintf("%s created successfully", def.Singular),
		"id":      rec.ID(),
	})
}

func (b *Backend) update(ctx echo.Context) error {
	def, err := b.definition(ctx)
	if def == nil {
		return err
	}
	if !authorized(ctx) {
		return message(ctx, http.StatusUnauthorized, "Not authenticated")
	}
	rr := ctx.Get("recorded").(RecordedRequest)

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.find(def, ctx.Param("id"))
	if i < 0 {
		return message(ctx, http.StatusNotFound, fmt.Sprintf("%s not found", def.Singular))
	}
	rec := b.data[def.CollectionPath()][i]
	for k, v := range rr.Fields {
		rec[k] = v
	}
	rec["updated_at"] = b.clock.Add(time.Second).Format(time.RFC3339)
	return message(ctx, http.StatusOK, fmt.Sprintf("%s updated successfully", def.Singular))
}

func (b *Backend) delete(ctx echo.Context) error {
	def, err := b.definition(ctx)
	if def == nil {
		return err
	}
	if !authorized(ctx) {
		return message(ctx, http.StatusUnauthorized, "Not authenticated")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.find(def, ctx.Param("id"))
	if i < 0 {
		return message(ctx, http.StatusNotFound, fmt.Sprintf("%s not found", def.Singular))
	}
	recs := b.data[def.CollectionPath()]
	b.data[def.CollectionPath()] = append(recs[:i:i], recs[i+1:]...)
	return message(ctx, http.StatusOK, fmt.Sprintf("%s deleted successfully", def.Singular))
}
