// Respite - Recovery Routine Place Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/respite

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// ValidationError is one failed rule on one field.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field is the JSON name of the field when it has one.
func (e *ValidationError) Field() string { return e.field }

// Tag is the failed rule, e.g. "gt" or "actorid".
func (e *ValidationError) Tag() string { return e.tag }

// Param is the rule argument, e.g. "50" for lte=50.
func (e *ValidationError) Param() string { return e.param }

func (e *ValidationError) Value() interface{} { return e.value }

func (e *ValidationError) Error() string { return e.message }

// RequestValidationError collects every failure found in one struct.
type RequestValidationError struct {
	errors []ValidationError
}

func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(ve.errors))
	for i := range ve.errors {
		parts[i] = ve.errors[i].message
	}
	return strings.Join(parts, "; ")
}

// APIError has the shape of api.APIError; api imports this package.
type APIError struct {
	Code    string
	Message string
	Details map[string]interface{}
}

const codeValidation = "VALIDATION_ERROR"

// ToAPIError renders the failures for a 400 response. A single failure
// reports its field, tag and value; several are listed under "fields".
func (ve *RequestValidationError) ToAPIError() *APIError {
	switch len(ve.errors) {
	case 0:
		return &APIError{Code: codeValidation, Message: "Validation failed"}
	case 1:
		e := ve.errors[0]
		return &APIError{
			Code:    codeValidation,
			Message: e.message,
			Details: map[string]interface{}{"field": e.field, "tag": e.tag, "value": e.value},
		}
	}

	fields := make([]map[string]interface{}, 0, len(ve.errors))
	summary := make([]string, 0, len(ve.errors))
	for _, e := range ve.errors {
		fields = append(fields, map[string]interface{}{"field": e.field, "tag": e.tag, "message": e.message})
		summary = append(summary, e.field+": "+e.message)
	}
	return &APIError{
		Code:    codeValidation,
		Message: strings.Join(summary, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// actorIDPattern: 1-64 letters (any script), digits or ._@-
var actorIDPattern = regexp.MustCompile(`^[\p{L}\p{N}._@-]{1,64}$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the shared validator. Besides the built-in rules it
// knows notblank (non-empty after trimming) and actorid.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("actorid", func(fl validator.FieldLevel) bool {
			return actorIDPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateStruct returns nil or the failures found in s.
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: describe(fe),
		})
	}
	return &RequestValidationError{errors: out}
}

// messages holds the human text per rule. %[1]s is the field, %[2]s the
// rule parameter.
var messages = map[string]string{
	"required":        "%[1]s is required",
	"notblank":        "%[1]s must not be blank",
	"actorid":         "%[1]s must be 1-64 letters, digits or ._@-",
	"latitude":        "%[1]s must be a valid latitude (-90 to 90)",
	"longitude":       "%[1]s must be a valid longitude (-180 to 180)",
	"uuid4":           "%[1]s must be a valid UUID",
	"oneof":           "%[1]s must be one of: %[2]s",
	"gte":             "%[1]s must be greater than or equal to %[2]s",
	"lte":             "%[1]s must be less than or equal to %[2]s",
	"gt":              "%[1]s must be greater than %[2]s",
	"lt":              "%[1]s must be less than %[2]s",
	"required_with":   "%[1]s is required when %[2]s is set",
	"excluded_unless": "%[1]s must be empty unless %[2]s",
}

func describe(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	if tmpl, ok := messages[fe.Tag()]; ok {
		if strings.Contains(tmpl, "%[2]s") {
			return fmt.Sprintf(tmpl, field, param)
		}
		return fmt.Sprintf(tmpl, field)
	}

	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
