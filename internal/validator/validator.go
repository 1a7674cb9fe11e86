package validator

import (
	"reflect"
	"regexp"

	"github.com/go-playground/validator/v10"
)

type GistsearchValidator struct {
	v *validator.Validate
}

func NewValidator() *GistsearchValidator {
	v := validator.New()
	_ = v.RegisterValidation("isstring", validateIsString)
	_ = v.RegisterValidation("regexp", validateRegexp)
	return &GistsearchValidator{v}
}

func (cv *GistsearchValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

func (cv *GistsearchValidator) Var(field interface{}, tag string) error {
	return cv.v.Var(field, tag)
}

// FirstInvalidField returns the name of the first field that failed validation.
func FirstInvalidField(err error) (string, bool) {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "", false
	}
	return errs[0].Field(), true
}

// validateIsString accepts only values holding a string, which matters for
// fields typed as interface{} decoded from JSON.
func validateIsString(fl validator.FieldLevel) bool {
	return fl.Field().Kind() == reflect.String
}

func validateRegexp(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}
