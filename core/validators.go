package core

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	phoneMinDigits = 10
	phoneMaxDigits = 15
)

var (
	// custom validation tags & texts
	phoneTag  = "phone"
	phoneText = "must be a valid phone number"

	isoDateTag  = "isodate"
	isoDateText = "must be a date (YYYY-MM-DD)"

	// overridden default texts, rendered next to their field
	requiredTag  = "required"
	RequiredText = "this field is required"
	NumberText   = "must be a number"

	overrides = map[string]string{
		"email": "must be a valid email address",
		"url":   "must be a valid URL",
		"oneof": "must be one of: {0}",
		"gte":   "must be {0} or greater",
		"lte":   "must be {0} or less",
		"min":   "must be at least {0}",
		"max":   "must be at most {0}",
	}
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators registers the custom validators & translations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(phoneTag, phoneValidation)
	RegisterCustomTranslation(validate, translator, phoneTag, phoneText)

	_ = validate.RegisterValidation(isoDateTag, isoDateValidation)
	RegisterCustomTranslation(validate, translator, isoDateTag, isoDateText)

	RegisterCustomTranslation(validate, translator, requiredTag, RequiredText, true)
	for tag, text := range overrides {
		RegisterCustomTranslation(validate, translator, tag, text, true)
	}
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
// The text may reference the tag parameter as {0}.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Param())
			return s
		},
	)
}

// TranslateFirst returns the translated message of the first validation error in err.
func TranslateFirst(err error, translator ut.Translator) string {
	if vErrs, ok := err.(validator.ValidationErrors); ok && len(vErrs) > 0 {
		return vErrs[0].Translate(translator)
	}
	return err.Error()
}

// Custom Global Validators

// phoneValidation allows an optional leading "+" followed by 10 to 15 digits.
// Spaces and dashes between digits are ignored.
func phoneValidation(fl validator.FieldLevel) bool {
	s := strings.TrimPrefix(strings.TrimSpace(fl.Field().String()), "+")
	var digits int
	for _, char := range s {
		switch {
		case char >= '0' && char <= '9':
			digits++
		case char == ' ' || char == '-':
		default:
			return false
		}
	}
	return digits >= phoneMinDigits && digits <= phoneMaxDigits
}

// isoDateValidation accepts YYYY-MM-DD dates and RFC3339 timestamps.
func isoDateValidation(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}
