package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"dutyservice/internal/types"
)

// Validator wraps go-playground/validator. Field paths in messages use JSON
// names, for example duties[0].id.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator that reports fields by their json tag.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateStruct validates s against its validate tags. A failure is a
// *types.AppError with code validation_invalid_input whose message lists
// every violation as "'<path>' with <reason>", joined by ", ".
func (v *Validator) ValidateStruct(s any) error {
	return v.toAppError(v.validate.Struct(s), "")
}

// ValidateVar validates a single value, such as a path parameter, under the
// given field name.
func (v *Validator) ValidateVar(field string, value any, tag string) error {
	return v.toAppError(v.validate.Var(value, tag), field)
}

func (v *Validator) toAppError(err error, field string) error {
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "validation misconfigured", err)
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return types.NewAppError(types.ErrCodeValidationInvalidInput, err.Error(), err)
	}

	parts := make([]string, 0, len(fieldErrs))
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := field
		if path == "" {
			path = fieldPath(fe)
		}
		fields = append(fields, path)
		parts = append(parts, fmt.Sprintf("'%s' with %s", path, reason(fe)))
	}

	return types.NewAppErrorWithDetails(
		types.ErrCodeValidationInvalidInput,
		strings.Join(parts, ", "),
		err,
		map[string]any{"fields": fields},
	)
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "missing value"
	case "uuid", "uuid4":
		return "invalid UUID"
	case "min":
		return "fewer than " + fe.Param() + " items"
	case "max":
		return "more than " + fe.Param() + " items"
	default:
		return "invalid value (" + fe.Tag() + ")"
	}
}
