// Package validation checks input structs and reports errors per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field name to its message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e[k])
	}
	return strings.Join(msgs, " ")
}

// Add sets the message for field unless one is already set.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err returns e as an error, nil when empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// AsErrors unwraps validation errors from err.
func AsErrors(err error) (Errors, bool) {
	var e Errors
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates the `validate` tags of s.
func Struct(s interface{}) Errors {
	errs := Errors{}
	err := validate.Struct(s)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("_", err.Error())
		return errs
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

// Attribute turns a field name into the words used in messages.
func Attribute(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func message(fe validator.FieldError) string {
	attr := Attribute(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attr)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", attr)
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", attr, fe.Param())
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", attr, fe.Param())
	case "len":
		return fmt.Sprintf("The %s must be %s characters.", attr, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", attr)
	default:
		return fmt.Sprintf("The %s is invalid.", attr)
	}
}

// TypeMessage is the message for a value that cannot be converted to a field
// of the given kind. Integer fields ending in _id reference another record.
func TypeMessage(field string, kind reflect.Kind) string {
	attr := Attribute(field)
	switch kind {
	case reflect.Bool:
		return fmt.Sprintf("The %s field must be true or false.", attr)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if strings.HasSuffix(field, "_id") {
			return fmt.Sprintf("The selected %s is invalid.", attr)
		}
		return fmt.Sprintf("The %s must be an integer.", attr)
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("The %s must be a number.", attr)
	case reflect.String:
		return fmt.Sprintf("The %s must be a string.", attr)
	default:
		return fmt.Sprintf("The %s is invalid.", attr)
	}
}
