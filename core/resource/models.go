package resource

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"
)

// Field kinds
const (
	KindText     = "text"
	KindTextArea = "textarea"
	KindNumber   = "number"
	KindBool     = "bool"
	KindDate     = "date"
	KindSelect   = "select"
	KindEmail    = "email"
	KindPhone    = "phone"
	KindURL      = "url"
)

// Actions
const (
	ActionList   = "list"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

var (
	AllActions = []string{ActionList, ActionCreate, ActionEdit, ActionDelete}
)

// Field is a scalar field tracked by a Resource Form.
type Field struct {
	Name     string
	Label    string
	Kind     string
	Required bool
	Rules    string // validator tags applied to non-empty values, eg. "email" or "gte=0"
	Options  []string
	Default  string
	Fallback string // shown (and searched) instead of an empty value
	Column   bool   // displayed in the list
}

// Attachment is a binary file uploaded with a resource.
// Ref is the record field in which the backend stores the uploaded asset path.
type Attachment struct {
	Name             string
	Label            string
	Accept           string
	RequiredOnCreate bool
	Ref              string
}

// Definition describes a backend collection and how the dashboard manages it.
type Definition struct {
	Name         string // URL segment in the dashboard, eg. "youtube-videos"
	Path         string // backend collection path, defaults to Name
	Label        string // plural, eg. "Courses"
	Singular     string // eg. "Course"
	PluralKey    string // list response key, eg. "courses"
	SingularKey  string // single response key, eg. "course"
	Singleton    bool   // one record, fetched from Path without an ID
	Fields       []Field
	Attachments  []Attachment
	SearchFields []string
	Actions      []string
}

func (d *Definition) Can(action string) bool {
	for _, a := range d.Actions {
		if a == action {
			return true
		}
	}
	return false
}

func (d *Definition) CollectionPath() string {
	if d.Path != "" {
		return d.Path
	}
	return d.Name
}

func (d *Definition) Field(name string) (Field, bool) {
	for _, fld := range d.Fields {
		if fld.Name == name {
			return fld, true
		}
	}
	return Field{}, false
}

func (d *Definition) Attachment(name string) (Attachment, bool) {
	for _, att := range d.Attachments {
		if att.Name == name {
			return att, true
		}
	}
	return Attachment{}, false
}

// Columns returns the fields displayed in the list.
func (d *Definition) Columns() []Field {
	cols := make([]Field, 0, len(d.Fields))
	for _, fld := range d.Fields {
		if fld.Column {
			cols = append(cols, fld)
		}
	}
	return cols
}

// Display returns the value of field as shown to the administrator.
func (d *Definition) Display(rec Record, field string) string {
	val := rec.String(field)
	if val == "" {
		if fld, ok := d.Field(field); ok {
			return fld.Fallback
		}
	}
	return val
}

// Record is an entity as returned by the backend.
type Record map[string]interface{}

// ID returns the server-assigned identifier.
func (r Record) ID() string {
	if id := r.String("_id"); id != "" {
		return id
	}
	return r.String("id")
}

// String returns the value of field formatted for display and form drafts.
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case int:
		return strconv.Itoa(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Time parses a server timestamp field; the zero time is returned when missing or invalid.
func (r Record) Time(field string) time.Time {
	s := r.String(field)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (r Record) CreatedAt() time.Time { return r.Time("created_at") }
func (r Record) UpdatedAt() time.Time { return r.Time("updated_at") }

// Body is a decoded backend response, returned as-is.
type Body map[string]interface{}

// Message returns the body's "message" field.
func (b Body) Message() string {
	if msg, ok := b["message"].(string); ok {
		return msg
	}
	return ""
}

// Records extracts the records held under key.
func (b Body) Records(key string) []Record {
	items, ok := b[key].([]interface{})
	if !ok {
		return nil
	}
	recs := make([]Record, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			recs = append(recs, obj)
		}
	}
	return recs
}

// Record extracts the record held under key.
func (b Body) Record(key string) (Record, bool) {
	obj, ok := b[key].(map[string]interface{})
	return obj, ok
}

// Payload maps field names to string, number or bool values.
type Payload map[string]interface{}

// File is a binary part of a multipart request.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Result is the outcome of a write.
type Result struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

func resultFrom(body Body) Result {
	return Result{Message: body.Message(), ID: Record(body).ID()}
}

// Stats are the dashboard totals.
type Stats struct {
	TotalUsers       int
	TotalCourses     int
	TotalTests       int
	TotalMaterials   int
	TotalEnrollments int
}

func statsFrom(body Body) Stats {
	num := func(key string) int {
		n, _ := strconv.Atoi(strings.SplitN(Record(body).String(key), ".", 2)[0])
		return n
	}
	return Stats{
		TotalUsers:       num("total_users"),
		TotalCourses:     num("total_courses"),
		TotalTests:       num("total_tests"),
		TotalMaterials:   num("total_materials"),
		TotalEnrollments: num("total_enrollments"),
	}
}

// Activity is a recent sign-up shown on the dashboard home.
type Activity struct {
	ID   string
	User string
	At   time.Time
}
