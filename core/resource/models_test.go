package resource

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	tests := []struct {
		name   string
		rec    Record
		field  string
		want   string
		wantID string
	}{
		{name: "mongo id", rec: Record{"_id": "m1", "id": "x"}, wantID: "m1"},
		{name: "plain id", rec: Record{"id": "p1"}, wantID: "p1"},
		{name: "numeric id", rec: Record{"id": 12.0}, wantID: "12"},
		{name: "no id", rec: Record{}, wantID: ""},
		{name: "float", rec: Record{"price": 499.5}, field: "price", want: "499.5"},
		{name: "whole float", rec: Record{"price": 500.0}, field: "price", want: "500"},
		{name: "bool", rec: Record{"is_paid": true}, field: "is_paid", want: "true"},
		{name: "missing", rec: Record{}, field: "title", want: ""},
		{name: "list", rec: Record{"tags": []interface{}{"a"}}, field: "tags", want: `["a"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantID, tt.rec.ID())
			if tt.field != "" {
				assert.Equal(t, tt.want, tt.rec.String(tt.field))
			}
		})
	}

	rec := Record{"created_at": "2025-06-01T10:00:00Z", "updated_at": "2025-06-01T10:00:00.123456"}
	assert.Equal(t, 2025, rec.CreatedAt().Year())
	assert.False(t, rec.UpdatedAt().IsZero())
	assert.True(t, Record{"created_at": "yesterday"}.CreatedAt().IsZero())
}

func TestRegistry(t *testing.T) {
	reg := DefaultRegistry()

	names := make([]string, 0, len(reg.All()))
	for _, def := range reg.All() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{
		"users", "institutions", "testimonials", "courses", "tests",
		"materials", "notifications", "youtube-videos", "contact",
	}, names)

	def, err := reg.Lookup(" Courses ")
	require.NoError(t, err)
	assert.Equal(t, "courses", def.CollectionPath())
	assert.True(t, def.Can(ActionCreate))

	videos, err := reg.Lookup("youtube-videos")
	require.NoError(t, err)
	assert.False(t, videos.Can(ActionEdit))
	assert.Equal(t, "videos", videos.PluralKey)

	_, err = reg.Lookup("cours")
	assert.Equal(t, ErrUnknown, errors.Cause(err))
	assert.Contains(t, err.Error(), "courses")

	_, err = reg.Lookup("zzz")
	assert.Equal(t, ErrUnknown, errors.Cause(err))
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestRegistry_Suggest(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		name      string
		in        string
		wantFirst string
	}{
		{name: "missing letter", in: "cours", wantFirst: "courses"},
		{name: "singular", in: "notification", wantFirst: "notifications"},
		{name: "typo", in: "institutoins", wantFirst: "institutions"},
		{name: "no match", in: "zzz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reg.Suggest(tt.in)
			assert.LessOrEqual(t, len(got), 3)
			if tt.wantFirst == "" {
				assert.Empty(t, got)
				return
			}
			require.NotEmpty(t, got)
			assert.Equal(t, tt.wantFirst, got[0])
		})
	}
}

func TestDefinitions(t *testing.T) {
	for _, def := range DefaultRegistry().All() {
		t.Run(def.Name, func(t *testing.T) {
			assert.NotEmpty(t, def.SingularKey)
			assert.NotEmpty(t, def.Columns())
			if !def.Singleton {
				assert.NotEmpty(t, def.PluralKey)
				assert.NotEmpty(t, def.SearchFields)
			}
			for _, name := range def.SearchFields {
				_, ok := def.Field(name)
				assert.True(t, ok, "search field %q is not a field", name)
			}
			for _, att := range def.Attachments {
				assert.NotEmpty(t, att.Ref, att.Name)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	courses, _ := DefaultRegistry().Lookup("courses")
	users, _ := DefaultRegistry().Lookup("users")
	recs := []Record{
		{"_id": "1", "title": "I PUC science", "instructor": "Dr. Rao"},
		{"_id": "2", "title": "Commerce", "category": "PUC", "instructor": "Ms. Iyer"},
		{"_id": "3", "title": "Painting", "description": "science of colours"},
	}
	ids := func(recs []Record) []string {
		out := make([]string, 0, len(recs))
		for _, rec := range recs {
			out = append(out, rec.ID())
		}
		return out
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "empty", query: "", want: []string{"1", "2", "3"}},
		{name: "blank", query: "   ", want: []string{"1", "2", "3"}},
		{name: "case insensitive", query: "SCI", want: []string{"1"}},
		{name: "any search field", query: "puc", want: []string{"1", "2"}},
		{name: "instructor", query: "iyer", want: []string{"2"}},
		{name: "no match", query: "biology", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(courses, recs, tt.query)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, ids(got), ids(Filter(courses, got, tt.query)), "idempotent")
		})
	}

	t.Run("fallback value", func(t *testing.T) {
		urecs := []Record{{"_id": "a", "provider": ""}, {"_id": "b", "provider": "google"}}
		assert.Equal(t, []string{"a"}, ids(Filter(users, urecs, "custom")))
		assert.Equal(t, "Custom Email", users.Display(urecs[0], "provider"))
	})
}

func TestResolveAssetURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{base: "https://api.example.com", ref: "uploads/a.png", want: "https://api.example.com/uploads/a.png"},
		{base: "https://api.example.com/", ref: "/uploads/a.png", want: "https://api.example.com/uploads/a.png"},
		{base: "https://api.example.com", ref: "https://cdn.example.com/a.png", want: "https://cdn.example.com/a.png"},
		{base: "https://api.example.com", ref: "HTTP://cdn.example.com/a.png", want: "HTTP://cdn.example.com/a.png"},
		{base: "https://api.example.com", ref: " ", want: ""},
	}
	for _, tt := range tests {
		if got := ResolveAssetURL(tt.base, tt.ref); got != tt.want {
			t.Errorf("ResolveAssetURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}
