package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"argip-api/internal/apperr"
)

// maxBodyBytes caps request bodies; every payload here is a handful of fields.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON reads the request body into dst and runs its validate tags.
// Unknown fields are ignored. Every failure is a validation error.
func DecodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	return Validate(dst)
}

// Validate runs struct validation on v and converts the first failure into a
// client-facing message.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation(err.Error())
	}
	return apperr.Validation(fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", field)
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", field)
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s characters", field, fe.Param())
	case "min":
		if fe.Param() == "1" {
			return fmt.Sprintf("Field '%s' must not be empty", field)
		}
		return fmt.Sprintf("Field '%s' must be at least %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("Field '%s' is invalid", field)
	}
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperr.Validation("Request body is required")
	case errors.As(err, &typeErr) && typeErr.Field == "":
		return apperr.Validation("Request body must be a JSON object")
	case errors.As(err, &typeErr):
		return apperr.Validation(fmt.Sprintf("Field '%s' has the wrong type", typeErr.Field))
	default:
		return apperr.Validation("Invalid JSON body")
	}
}
