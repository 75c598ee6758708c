// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"strings"
)

// FieldError describes a single validation failure scoped to one form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates field-scoped validation failures for one write
// attempt. It satisfies the error interface so stores and handlers can pass
// it through normal error returns.
type ValidationError struct {
	Fields []FieldError
}

// Add appends a field-scoped failure.
func (v *ValidationError) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// Empty returns true when no failures were recorded.
func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

// For returns the message for the given field, or "" if the field is valid.
func (v *ValidationError) For(field string) string {
	for _, f := range v.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

func (v *ValidationError) Error() string {
	parts := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError, or returns nil if
// err is not a validation failure.
func AsValidationError(err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return nil
}
