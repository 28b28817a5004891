// Package validate wraps a shared go-playground validator configured with
// English messages and JSON field names.
package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	slugTag   = "slug"
	slugText  = "{0} must contain only lowercase letters, digits and dashes"
	slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = validate.RegisterValidation(slugTag, func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
	registerTranslation(slugTag, slugText)
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Error carries one translated message per failing field.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Struct validates v's `validate` tags. Field errors come back as *Error.
func Struct(v any) error {
	return translate(validate.Struct(v))
}

// Var validates a single value against a tag expression such as "required,email".
func Var(v any, tag string) error {
	return translate(validate.Var(v, tag))
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return &Error{Messages: msgs}
}
