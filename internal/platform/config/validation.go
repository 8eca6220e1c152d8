package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jsamuelsen/go-brain-sdk/internal/domain"
)

// validate is the package-level validator instance.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the loaded configuration. It fails fast: no client is
// constructed and nothing touches the network under an invalid config.
// The returned error matches domain.ErrConfiguration and lists every
// offending field, one per line.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	lines := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		lines = append(lines, describe(fe))
	}

	return fmt.Errorf("%w:\n  %s", domain.ErrConfiguration, strings.Join(lines, "\n  "))
}

// describe renders one field failure, like "api.workspace is required".
func describe(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// fieldPath lowers a validator namespace like "Config.API.Workspace"
// into the key form users set in profiles, "api.workspace".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}
