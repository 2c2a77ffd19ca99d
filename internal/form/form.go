// Package form validates storefront and admin forms before they are submitted.
package form

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ErrInvalid is wrapped by Errors.
var ErrInvalid = errors.New("form is invalid")

// Errors maps a form field name to the message shown under it.
type Errors map[string]string

func (e Errors) Error() string {
	fields := e.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

func (e Errors) Unwrap() error {
	return ErrInvalid
}

// Fields returns the names of the invalid fields in sorted order.
func (e Errors) Fields() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validator checks forms tagged with `form` names and `validate` rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "number", isNumber)
	mustRegister(v, "atleast", atLeast)
	mustRegister(v, "positive", isPositive)
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
	}
}

// Validate returns nil for a valid form and Errors otherwise. Only the first
// failing rule of each field is reported.
func (v *Validator) Validate(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	out := make(Errors, len(validationErrors))
	for _, fieldErr := range validationErrors {
		if _, seen := out[fieldErr.Field()]; !seen {
			out[fieldErr.Field()] = message(fieldErr)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "eqfield":
		return "Passwords do not match"
	case "number":
		return "Please enter a valid number"
	case "atleast":
		return "Value must be at least " + fe.Param()
	case "positive":
		return "Price must be greater than 0"
	case "min":
		return fmt.Sprintf("Must be at least %s characters long", fe.Param())
	default:
		return "Invalid value"
	}
}

// decimal is the plain notation a number input accepts: no hex, no
// underscores, no Inf or NaN.
var decimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

func parseDecimal(s string) (float64, bool) {
	if !decimal.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// Empty values are left to notblank/required.
func isNumber(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	_, ok := parseDecimal(s)
	return ok
}

func atLeast(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	n, ok := parseDecimal(s)
	if !ok {
		return true // reported by number
	}
	limit, err := strconv.ParseFloat(fl.Param(), 64)
	if err != nil {
		panic(fmt.Sprintf("atleast: bad parameter %q", fl.Param()))
	}
	return n >= limit
}

func isPositive(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	n, ok := parseDecimal(s)
	return !ok || n > 0
}
