package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse
var validate = validator.New()

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}
