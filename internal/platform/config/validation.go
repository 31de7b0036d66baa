package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their koanf key so messages match the YAML and
// APP_ env names an operator actually sets.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// ruleMessages maps a validator tag to a message template. %[1]s is the
// config key, %[2]s the rule parameter.
var ruleMessages = map[string]string{
	"required":        "%[1]s is required",
	"required_if":     "%[1]s is required when %[2]s",
	"required_unless": "%[1]s is required unless %[2]s",
	"min":             "%[1]s must be at least %[2]s",
	"max":             "%[1]s must be at most %[2]s",
	"oneof":           "%[1]s must be one of: %[2]s",
	"url":             "%[1]s must be a valid URL",
	"startswith":      "%[1]s must start with %[2]q",
	"excludesall":     "%[1]s must not contain any of %[2]q",
}

// Validate checks every section and returns all violations at once.
// Startup aborts on error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		lines[i] = describe(fe)
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func describe(fe validator.FieldError) string {
	key := configKey(fe.Namespace())

	if tmpl, ok := ruleMessages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, key, fe.Param())
	}

	return fmt.Sprintf("%s failed validation: %s", key, fe.Tag())
}

// configKey drops the root type from a validator namespace:
// "Config.client.retry.max_attempts" becomes "client.retry.max_attempts".
func configKey(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
