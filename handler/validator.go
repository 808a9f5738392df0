package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"postapi/domain"
)

// RequestValidator checks bound request structs against their validate
// tags and reports failures as *domain.ValidationError keyed by JSON name.
type RequestValidator struct {
	validate *validator.Validate
}

func NewValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i any) error {
	err := rv.validate.Struct(i)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	if fe.Tag() == "required" {
		return domain.RequiredMessage(fe.Field())
	}
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", field, fe.Param())
	}
	return fmt.Sprintf("The %s is invalid.", field)
}
