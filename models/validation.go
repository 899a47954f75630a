package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects the schema violations of a payload.
type ValidationError struct {
	Fields []FieldError
}

func (v *ValidationError) Add(field, msg string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: msg})
}

// OrNil returns v as an error only if at least one field was rejected.
func (v *ValidationError) OrNil() error {
	if len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// enums maps the custom enum tags to their allowed values.
var enums = map[string][]string{
	"category": Categories,
	"status":   Statuses,
	"priority": Priorities,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	for tag, allowed := range enums {
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			for _, a := range allowed {
				if s == a {
					return true
				}
			}
			return false
		})
		if err != nil {
			panic(err)
		}
	}
	return v
}

// ValidateStruct checks s against its validate tags and reports every
// rejected field by its JSON name.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	v := &ValidationError{}
	for _, fe := range fieldErrs {
		v.Add(fe.Field(), message(fe))
	}
	return v.OrNil()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	if allowed, ok := enums[fe.Tag()]; ok {
		return "must be one of " + joinQuoted(allowed)
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}

func joinQuoted(vals []string) string {
	q := make([]string, len(vals))
	for i, v := range vals {
		q[i] = `"` + v + `"`
	}
	return strings.Join(q, ", ")
}
