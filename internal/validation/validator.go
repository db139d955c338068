// Package validation wraps go-playground/validator and reports problems as
// domain.ValidationErrors keyed by JSON field path.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"quiz-match/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	basicEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
			return basicEmailPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateStruct returns nil when s is valid.
func ValidateStruct(s interface{}) domain.ValidationErrors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domain.ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	out := make(domain.ValidationErrors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, domain.FieldError{
			Field:   fieldPath(fe),
			Message: translateError(fe),
			Value:   safeValue(fe),
		})
	}
	return out
}

// fieldPath drops the struct name: "SubmitQuizRequest.answers[0].optionId" -> "answers[0].optionId".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// safeValue echoes scalars only; slices and structs stay out of the response.
func safeValue(fe validator.FieldError) interface{} {
	switch fe.Kind() {
	case reflect.String, reflect.Int, reflect.Int64, reflect.Float64:
		return fe.Value()
	default:
		return nil
	}
}

func translateError(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "basic_email", "email":
		return "must be a valid email address"
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at most %s items", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ValidateVar checks a single value against tag and reports failures under field.
func ValidateVar(field string, value interface{}, tag string) domain.ValidationErrors {
	err := GetValidator().Var(value, tag)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domain.ValidationErrors{{Field: field, Message: err.Error()}}
	}
	out := make(domain.ValidationErrors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, domain.FieldError{Field: field, Message: translateError(fe), Value: safeValue(fe)})
	}
	return out
}
