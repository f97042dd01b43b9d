package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/lkendi/Task-Management-System/internal/apperrors"
	"github.com/lkendi/Task-Management-System/internal/listquery"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("letterdigit", func(fl validator.FieldLevel) bool {
		var letter, digit bool
		for _, r := range fl.Field().String() {
			letter = letter || unicode.IsLetter(r)
			digit = digit || unicode.IsDigit(r)
		}
		return letter && digit
	})

	_ = v.RegisterValidation("duedate", func(fl validator.FieldLevel) bool {
		_, err := parseDueDate(fl.Field().String())
		return err == nil
	})

	return v
}

// parseDueDate accepts a calendar date (midnight UTC) or an RFC 3339 timestamp.
func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(listquery.DateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// validateStruct checks s against its validate tags. overrides replaces the
// message of a "field.tag" pair. The result may be empty; call OrNil.
func validateStruct(s any, overrides map[string]string) *apperrors.ValidationError {
	verr := &apperrors.ValidationError{}

	err := validate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			field := fe.Field()
			if msg, ok := overrides[field+"."+fe.Tag()]; ok {
				verr.Add(field, msg)
				continue
			}
			verr.Add(field, message(fe))
		}
	}
	return verr
}

func message(fe validator.FieldError) string {
	name := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", name, fe.Param())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", name)
	case "oneof", "gt":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", strings.TrimSuffix(name, " confirmation"))
	case "datetime":
		return fmt.Sprintf("The %s field must match the format Y-m-d.", name)
	case "letterdigit":
		return fmt.Sprintf("The %s field must contain at least one letter and one number.", name)
	case "duedate":
		return fmt.Sprintf("The %s field must be a valid date.", name)
	}
	return fmt.Sprintf("The %s field is invalid.", name)
}
