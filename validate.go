package billing

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator reports field names using their json tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput checks in and returns a *ValidationError naming every
// failing field.
func (e *Engine) validateInput(in any) error {
	err := e.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Message: err.Error()}
	}

	var (
		missing []string
		invalid []string
	)
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}

	verr := &ValidationError{Fields: append(missing, invalid...)}
	switch {
	case len(invalid) == 0:
		verr.Message = "missing required field(s)"
	case len(missing) == 0:
		verr.Message = "invalid field(s)"
	default:
		verr.Message = "missing or invalid field(s)"
	}
	return verr
}
