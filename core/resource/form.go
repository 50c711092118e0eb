package resource

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"sync/atomic"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
)

// Form modes
const (
	ModeCreate = "create"
	ModeEdit   = "edit"
)

var ErrSubmitInProgress = errors.New("a submission is already in progress")

// Validator checks form drafts against their field rules.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator expects validate to have been set up with core.InitValidators.
func NewValidator(validate *validator.Validate, translator ut.Translator) *Validator {
	return &Validator{validate: validate, translator: translator}
}

// Check returns the error of value against fld, or "" if it is valid.
// Empty optional values are always valid.
func (v *Validator) Check(fld Field, value string) string {
	value = core.CleanString(value)
	if value == "" {
		if fld.Required {
			return core.RequiredText
		}
		return ""
	}

	var subject interface{} = value
	switch fld.Kind {
	case KindNumber:
		num, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsInf(num, 0) || math.IsNaN(num) {
			return core.NumberText
		}
		subject = num
	case KindBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return core.RequiredText
		}
		return ""
	}

	if fld.Rules == "" {
		return ""
	}
	if err := v.validate.Var(subject, fld.Rules); err != nil {
		return core.TranslateFirst(err, v.translator)
	}
	return ""
}

// Form is a Resource Form: a draft of one record in either create or edit mode.
// The mode never changes during the form's lifetime.
type Form struct {
	Def    *Definition
	Mode   string
	ID     string            // edited record
	Draft  map[string]string // field -> current value
	Files  map[string]File   // attachment -> uploaded file
	Errors map[string]string // field or attachment -> error
	Err    string            // form-level error, eg. returned by the backend

	seed       map[string]string
	submitting int32
}

// NewCreateForm returns an empty form, seeded with the fields' defaults.
func NewCreateForm(def *Definition) *Form {
	seed := make(map[string]string, len(def.Fields))
	for _, fld := range def.Fields {
		seed[fld.Name] = fld.Default
	}
	return newForm(def, ModeCreate, "", seed)
}

// NewEditForm returns a form seeded from rec.
// The seed also keeps rec's asset references, shown next to the attachments.
func NewEditForm(def *Definition, rec Record) *Form {
	seed := make(map[string]string, len(def.Fields)+len(def.Attachments))
	for _, fld := range def.Fields {
		seed[fld.Name] = rec.String(fld.Name)
	}
	for _, att := range def.Attachments {
		if ref := rec.String(att.Ref); ref != "" {
			seed[att.Ref] = ref
		}
	}
	return newForm(def, ModeEdit, rec.ID(), seed)
}

// RestoreForm rebuilds a form from a seed previously returned by Form.SeedJSON.
func RestoreForm(def *Definition, mode, id, rawSeed string) (*Form, error) {
	if mode != ModeCreate && mode != ModeEdit {
		return nil, errors.Errorf("invalid form mode %q", mode)
	}
	seed := make(map[string]string, len(def.Fields))
	if rawSeed != "" {
		if err := json.Unmarshal([]byte(rawSeed), &seed); err != nil {
			return nil, errors.Wrap(err, "decoding form seed")
		}
	}
	return newForm(def, mode, id, seed), nil
}

func newForm(def *Definition, mode, id string, seed map[string]string) *Form {
	f := &Form{Def: def, Mode: mode, ID: id, seed: seed}
	f.Reset()
	return f
}

func (f *Form) IsEdit() bool { return f.Mode == ModeEdit }

// SeedJSON encodes the values the form was opened with.
func (f *Form) SeedJSON() string {
	b, _ := json.Marshal(f.seed)
	return string(b)
}

// Assets returns the asset references of the edited record, keyed by Attachment.Ref.
func (f *Form) Assets() Record {
	rec := make(Record, len(f.Def.Attachments))
	if !f.IsEdit() {
		return rec
	}
	for _, att := range f.Def.Attachments {
		if ref := f.seed[att.Ref]; ref != "" {
			rec[att.Ref] = ref
		}
	}
	return rec
}

// Reset discards the draft, files and errors, reverting to the seeded values.
func (f *Form) Reset() {
	f.Draft = make(map[string]string, len(f.seed))
	for _, fld := range f.Def.Fields {
		f.Draft[fld.Name] = f.seed[fld.Name]
	}
	f.Files = make(map[string]File)
	f.Errors = make(map[string]string)
	f.Err = ""
}

// Set updates the draft with the submitted values. Unknown fields are ignored.
// An absent bool field means false, like an unchecked checkbox.
func (f *Form) Set(values map[string]string) {
	for _, fld := range f.Def.Fields {
		val, ok := values[fld.Name]
		if fld.Kind == KindBool {
			b, _ := strconv.ParseBool(val)
			f.Draft[fld.Name] = strconv.FormatBool(ok && (b || val == "on"))
			continue
		}
		if ok {
			f.Draft[fld.Name] = val
		}
	}
}

// Attach adds an uploaded file. Files are only sent in create mode.
func (f *Form) Attach(file File) {
	if _, ok := f.Def.Attachment(file.Field); ok {
		f.Files[file.Field] = file
	}
}

// Validate fills Errors and reports whether the draft may be submitted.
func (f *Form) Validate(v *Validator) bool {
	f.Errors = make(map[string]string)
	for _, fld := range f.Def.Fields {
		if msg := v.Check(fld, f.Draft[fld.Name]); msg != "" {
			f.Errors[fld.Name] = msg
		}
	}
	if !f.IsEdit() {
		for _, att := range f.Def.Attachments {
			if _, ok := f.Files[att.Name]; att.RequiredOnCreate && !ok {
				f.Errors[att.Name] = core.RequiredText
			}
		}
	}
	return len(f.Errors) == 0
}

// Payload converts the draft: numbers and bools are typed, other fields are trimmed strings.
// Empty optional numbers are left out on create and cleared (null) on edit.
func (f *Form) Payload() Payload {
	payload := make(Payload, len(f.Def.Fields))
	for _, fld := range f.Def.Fields {
		val := core.CleanString(f.Draft[fld.Name])
		switch fld.Kind {
		case KindNumber:
			if num, err := strconv.ParseFloat(val, 64); err == nil {
				payload[fld.Name] = num
			} else if val == "" && f.IsEdit() {
				payload[fld.Name] = nil
			}
		case KindBool:
			b, _ := strconv.ParseBool(val)
			payload[fld.Name] = b
		default:
			payload[fld.Name] = val
		}
	}
	return payload
}

// Submit validates the draft and, if valid, creates or updates the record.
// On failure the draft is kept and Err or Errors describe what went wrong.
// A validation failure never reaches svc.
func (f *Form) Submit(ctx context.Context, svc *Service, v *Validator, sess session.Session) (Result, error) {
	if !atomic.CompareAndSwapInt32(&f.submitting, 0, 1) {
		return Result{}, ErrSubmitInProgress
	}
	defer atomic.StoreInt32(&f.submitting, 0)

	f.Err = ""
	if !f.Validate(v) {
		flds := make([]core.FieldError, 0, len(f.Errors))
		for _, fld := range f.Def.Fields {
			if msg, ok := f.Errors[fld.Name]; ok {
				flds = append(flds, core.FieldError{Field: fld.Name, Error: msg})
			}
		}
		for _, att := range f.Def.Attachments {
			if msg, ok := f.Errors[att.Name]; ok {
				flds = append(flds, core.FieldError{Field: att.Name, Error: msg})
			}
		}
		return Result{}, core.NewValidationError(nil, flds...)
	}

	var res Result
	var err error
	if f.IsEdit() {
		res, err = svc.Update(ctx, sess, f.Def, f.ID, f.Payload())
	} else {
		files := make([]File, 0, len(f.Files))
		for _, att := range f.Def.Attachments {
			if file, ok := f.Files[att.Name]; ok {
				files = append(files, file)
			}
		}
		res, err = svc.Create(ctx, sess, f.Def, f.Payload(), files...)
	}
	if err != nil {
		f.Err = errors.Cause(err).Error()
		return Result{}, err
	}
	return res, nil
}
