package main

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError aggregates every violated field of a payload in a
// single error, so the caller sees all problems in one response.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

// NewValidationError builds a ValidationError from plain field messages.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// BookValidator checks create and update payloads against their schemas.
type BookValidator struct {
	validate *validator.Validate
}

// NewBookValidator returns a ready to use BookValidator reporting
// violations under the payloads json field names.
func NewBookValidator() *BookValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &BookValidator{validate: v}
}

// ValidateCreate checks a creation payload. All six business fields are
// required. It collects every violation instead of failing on the first.
func (bv *BookValidator) ValidateCreate(req *CreateBookRequest) error {
	return bv.translate(bv.validate.Struct(req))
}

// ValidateUpdate checks an update payload. Each field is optional but a
// supplied field must satisfy the same constraints as on creation.
func (bv *BookValidator) ValidateUpdate(req *UpdateBookRequest) error {
	return bv.translate(bv.validate.Struct(req))
}

func (bv *BookValidator) translate(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewValidationError(err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields = append(fields, fe.Field()+" is required")
		case "min":
			fields = append(fields, fe.Field()+" must not be empty")
		default:
			fields = append(fields, fmt.Sprintf("%s is not valid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return &ValidationError{Fields: fields}
}
