// Package validation holds the shared struct validator. Failures are rendered
// as English sentences using the request's JSON field names.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	appErrors "github.com/noah-isme/workload-api/pkg/errors"
)

var (
	// Validate is the process-wide validator used by services.
	Validate *validator.Validate
	// Translator renders validation failures in English.
	Translator ut.Translator
)

const (
	approvalStatusTag = "approval_status"
	lecturerStatusTag = "lecturer_status"
)

func init() {
	Validate = validator.New()

	locale := en.New()
	uni := ut.New(locale, locale)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(approvalStatusTag, oneOf("PENDING", "APPROVED", "REJECTED"))
	_ = Validate.RegisterValidation(lecturerStatusTag, oneOf("DRAFT", "PENDING", "APPROVED", "REJECTED"))
	registerTranslation(approvalStatusTag, "{0} must be one of PENDING, APPROVED, REJECTED")
	registerTranslation(lecturerStatusTag, "{0} must be one of DRAFT, PENDING, APPROVED, REJECTED")
}

// Error converts a validator failure into a VALIDATION_ERROR with readable
// messages. Non-validator errors keep the fallback message.
func Error(err error, fallback string) *appErrors.Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Translate(Translator))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(messages, "; "))
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				return true
			}
			field = field.Elem()
		}
		current := field.String()
		for _, v := range values {
			if current == v {
				return true
			}
		}
		return false
	}
}

func registerTranslation(tag, text string) {
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}
