package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator validates request payloads and renders failures in english.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// FieldError is a single translated validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidator creates a Validator with english translations registered.
func NewValidator() (*Validator, error) {
	english := en.New()
	uni := ut.New(english, english)

	translator, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("english translator not found")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, fmt.Errorf("failed to register validator translations: %w", err)
	}

	return &Validator{
		validate:   validate,
		translator: translator,
	}, nil
}

// Struct validates s and returns one FieldError per failing field.
// A non-validation error (for example a nil payload) is returned as err.
func (v *Validator) Struct(s any) ([]FieldError, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	fieldErrs := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fieldErrs = append(fieldErrs, FieldError{
			Field:   fe.Field(),
			Message: fe.Translate(v.translator),
		})
	}

	return fieldErrs, nil
}
