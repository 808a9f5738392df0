package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthenticated")
	ErrConflict     = errors.New("resource already exists")
)

// ValidationError carries field-level messages keyed by request field name.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = map[string][]string{}
	}
	v.Fields[field] = append(v.Fields[field], message)
}

func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

// RequiredMessage is the validation message for a missing field.
func RequiredMessage(field string) string {
	return fmt.Sprintf("The %s field is required.", strings.ReplaceAll(field, "_", " "))
}
