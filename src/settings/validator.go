package settings

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator validates settings values using go-playground/validator.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new settings validator.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// Validate checks every configured model. Duplicate names are allowed
// (lookup is first-match-wins); fields are checked per the ModelConfig
// validate tags.
func (v *Validator) Validate(settings *Settings) error {
	for i, m := range settings.Models {
		if err := v.validate.Struct(m); err != nil {
			if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
				e := errs[0]
				return fmt.Errorf("model %d (%s): field %s failed validation %q", i, m.Name, e.Field(), e.Tag())
			}
			return fmt.Errorf("model %d (%s): %w", i, m.Name, err)
		}
	}
	return nil
}
