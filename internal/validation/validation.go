// Package validation runs struct-tag validation on request inputs and reports
// failures as field-scoped apperr.ValidationError values keyed by JSON name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/models"

	"github.com/go-playground/validator/v10"
)

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
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("task_priority", func(fl validator.FieldLevel) bool {
		return models.TaskPriority(fl.Field().String()).Valid()
	})
	return v
}

// Engine returns the shared validator, for callers that need to register
// additional rules or plug it into a framework.
func Engine() *validator.Validate {
	return validate
}

// Struct validates s and returns a *apperr.ValidationError describing every
// failing field, or nil.
func Struct(s any) error {
	return Translate(validate.Struct(s))
}

// Translate converts validator errors into a *apperr.ValidationError. Other
// errors are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &apperr.ValidationError{}
	for _, fe := range verrs {
		ve.Add(fieldName(fe), Message(fe))
	}
	return ve
}

// fieldName drops the top-level struct name from the namespace, so nested
// fields read "members[0]" rather than "BoardInput.members[0]".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// Message renders the client-facing message for a failed rule.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "notblank":
		return "This field may not be blank."
	case "email":
		return "Enter a valid email address."
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "oneof", "task_status", "task_priority":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "gt", "gte":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "unique":
		return "Duplicate values are not allowed."
	}
	return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
}
