// Package validator runs the struct-tag checks on the registration and room
// DTOs.
package validator

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate returns a field -> failed-rule map, nil when everything passes.
// Handlers forward the map as the error details payload.
func Validate(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
