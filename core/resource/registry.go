package resource

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

var ErrUnknown = errors.New("unknown resource")

var (
	users = Definition{
		Name:        "users",
		Label:       "Users",
		Singular:    "User",
		PluralKey:   "users",
		SingularKey: "user",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Column: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Rules: "email", Column: true},
			{Name: "contact_no", Label: "Contact No.", Kind: KindPhone, Rules: "phone", Column: true},
			{Name: "gender", Label: "Gender", Kind: KindSelect, Rules: "oneof=male female other", Options: []string{"male", "female", "other"}},
			{Name: "education", Label: "Education", Kind: KindText},
			{Name: "course", Label: "Course", Kind: KindText},
			{Name: "provider", Label: "Provider", Kind: KindText, Fallback: "Custom Email", Column: true},
			{Name: "is_active", Label: "Active", Kind: KindBool, Column: true},
		},
		SearchFields: []string{"name", "email", "provider"},
		Actions:      []string{ActionList, ActionEdit, ActionDelete},
	}

	institutions = Definition{
		Name:        "institutions",
		Label:       "Institutions",
		Singular:    "Institution",
		PluralKey:   "institutions",
		SingularKey: "institution",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true, Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea, Required: true, Column: true},
			{Name: "vision", Label: "Vision", Kind: KindTextArea},
			{Name: "mission", Label: "Mission", Kind: KindTextArea},
		},
		SearchFields: []string{"name", "description", "vision", "mission"},
		Actions:      AllActions,
	}

	courses = Definition{
		Name:        "courses",
		Label:       "Courses",
		Singular:    "Course",
		PluralKey:   "courses",
		SingularKey: "course",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true},
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea},
			{Name: "category", Label: "Category", Kind: KindText, Required: true, Column: true},
			{Name: "sub_category", Label: "Sub Category", Kind: KindText, Required: true},
			{Name: "start_date", Label: "Start Date", Kind: KindDate, Required: true, Rules: "isodate"},
			{Name: "end_date", Label: "End Date", Kind: KindDate, Required: true, Rules: "isodate"},
			{Name: "duration", Label: "Duration", Kind: KindText, Required: true},
			{Name: "instructor", Label: "Instructor", Kind: KindText, Required: true, Column: true},
			{Name: "price", Label: "Price", Kind: KindNumber, Required: true, Rules: "gte=0", Column: true},
		},
		Attachments: []Attachment{
			{Name: "thumbnail", Label: "Thumbnail", Accept: "image/*", RequiredOnCreate: true, Ref: "thumbnail_image"},
		},
		SearchFields: []string{"title", "name", "category", "sub_category", "instructor"},
		Actions:      AllActions,
	}

	materials = Definition{
		Name:        "materials",
		Label:       "Materials",
		Singular:    "Material",
		PluralKey:   "materials",
		SingularKey: "material",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea},
			{Name: "category", Label: "Category", Kind: KindText, Required: true, Column: true},
			{Name: "course", Label: "Course", Kind: KindText, Required: true, Column: true},
			{Name: "is_paid", Label: "Paid", Kind: KindBool, Default: "false", Column: true},
		},
		Attachments: []Attachment{
			{Name: "pdf_file", Label: "PDF File", Accept: "application/pdf", RequiredOnCreate: true, Ref: "file_path"},
		},
		SearchFields: []string{"title", "category", "course"},
		Actions:      AllActions,
	}

	tests = Definition{
		Name:        "tests",
		Label:       "Tests",
		Singular:    "Test",
		PluralKey:   "tests",
		SingularKey: "test",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea},
			{Name: "category", Label: "Category", Kind: KindText, Required: true, Column: true},
			{Name: "course", Label: "Course", Kind: KindText, Required: true, Column: true},
			{Name: "duration_minutes", Label: "Duration (minutes)", Kind: KindNumber, Required: true, Rules: "gte=1", Column: true},
			{Name: "total_marks", Label: "Total Marks", Kind: KindNumber, Required: true, Rules: "gte=1"},
			{Name: "passing_marks", Label: "Passing Marks", Kind: KindNumber, Rules: "gte=0"},
			{Name: "start_date", Label: "Start Date", Kind: KindDate, Rules: "isodate"},
			{Name: "end_date", Label: "End Date", Kind: KindDate, Rules: "isodate"},
		},
		SearchFields: []string{"title", "category", "course"},
		Actions:      AllActions,
	}

	testimonials = Definition{
		Name:        "testimonials",
		Label:       "Testimonials",
		Singular:    "Testimonial",
		PluralKey:   "testimonials",
		SingularKey: "testimonial",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea, Required: true},
			{Name: "student_name", Label: "Student Name", Kind: KindText, Required: true, Column: true},
			{Name: "course", Label: "Course", Kind: KindText, Required: true, Column: true},
			{Name: "rating", Label: "Rating", Kind: KindNumber, Required: true, Rules: "gte=1,lte=5", Default: "5", Column: true},
			{Name: "media_type", Label: "Media Type", Kind: KindSelect, Rules: "oneof=video image", Options: []string{"video", "image"}, Default: "video"},
		},
		Attachments: []Attachment{
			{Name: "media_file", Label: "Media File", Accept: "video/*,image/*", RequiredOnCreate: true, Ref: "media_url"},
			{Name: "student_image", Label: "Student Image", Accept: "image/*", Ref: "student_image"},
		},
		SearchFields: []string{"title", "student_name", "course", "rating"},
		Actions:      AllActions,
	}

	notifications = Definition{
		Name:        "notifications",
		Label:       "Notifications",
		Singular:    "Notification",
		PluralKey:   "notifications",
		SingularKey: "notification",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "message", Label: "Message", Kind: KindTextArea, Required: true, Column: true},
			{Name: "type", Label: "Type", Kind: KindSelect, Rules: "oneof=info alert update", Options: []string{"info", "alert", "update"}, Default: "info", Column: true},
		},
		SearchFields: []string{"title", "message", "type"},
		Actions:      AllActions,
	}

	youtubeVideos = Definition{
		Name:        "youtube-videos",
		Label:       "YouTube Videos",
		Singular:    "YouTube Video",
		PluralKey:   "videos",
		SingularKey: "video",
		Fields: []Field{
			{Name: "title", Label: "Title", Kind: KindText, Required: true, Column: true},
			{Name: "youtube_url", Label: "YouTube URL", Kind: KindURL, Required: true, Rules: "url", Column: true},
			{Name: "description", Label: "Description", Kind: KindTextArea},
		},
		SearchFields: []string{"title", "description"},
		Actions:      []string{ActionList, ActionCreate, ActionDelete},
	}

	contact = Definition{
		Name:        "contact",
		Label:       "Contact",
		Singular:    "Contact",
		SingularKey: "contact",
		Singleton:   true,
		Fields: []Field{
			{Name: "address", Label: "Address", Kind: KindTextArea, Column: true},
			{Name: "phone", Label: "Phone", Kind: KindPhone, Rules: "phone", Column: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Rules: "email", Column: true},
		},
		Actions: []string{ActionList, ActionEdit},
	}
)

// Registry holds the resource definitions, in sidebar order.
type Registry struct {
	defs  []*Definition
	index map[string]*Definition
}

// NewRegistry returns a Registry holding defs. Definitions without a Path use their Name.
func NewRegistry(defs ...Definition) *Registry {
	reg := &Registry{index: make(map[string]*Definition, len(defs))}
	for i := range defs {
		def := defs[i]
		reg.defs = append(reg.defs, &def)
		reg.index[def.Name] = &def
	}
	return reg
}

// DefaultRegistry returns the definitions of every resource managed by the dashboard.
func DefaultRegistry() *Registry {
	return NewRegistry(users, institutions, testimonials, courses, tests, materials, notifications, youtubeVideos, contact)
}

func (reg *Registry) All() []*Definition {
	return reg.defs
}

// Lookup returns the definition named name.
// Unknown names return an error wrapping ErrUnknown that lists close matches.
func (reg *Registry) Lookup(name string) (*Definition, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if def, ok := reg.index[name]; ok {
		return def, nil
	}
	if suggestions := reg.Suggest(name); len(suggestions) > 0 {
		return nil, errors.Wrap(ErrUnknown, fmt.Sprintf("%q (did you mean %s?)", name, strings.Join(suggestions, ", ")))
	}
	return nil, errors.Wrap(ErrUnknown, fmt.Sprintf("%q", name))
}

const (
	maxSuggestions  = 3
	minSuggestRatio = 0.6
)

// Suggest returns up to 3 resource names close to name, closest first.
func (reg *Registry) Suggest(name string) []string {
	type match struct {
		name  string
		ratio float64
	}
	var matches []match
	for n := range reg.index {
		ratio := difflib.NewMatcher(strings.Split(name, ""), strings.Split(n, "")).Ratio()
		if ratio >= minSuggestRatio {
			matches = append(matches, match{name: n, ratio: ratio})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].ratio != matches[j].ratio {
			return matches[i].ratio > matches[j].ratio
		}
		return matches[i].name < matches[j].name
	})
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.name)
	}
	return names
}
