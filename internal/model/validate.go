package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError lists the draft fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))
	for name := range v.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+v.Fields[name])
	}
	return "invalid product: " + strings.Join(parts, "; ")
}

// Validate checks the draft after trimming surrounding whitespace.
func (d Draft) Validate() error {
	trimmed := Draft{
		Name:        strings.TrimSpace(d.Name),
		Category:    strings.TrimSpace(d.Category),
		Price:       d.Price,
		Description: strings.TrimSpace(d.Description),
		Image:       strings.TrimSpace(d.Image),
	}
	err := validate.Struct(trimmed)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate product: %w", err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[strings.ToLower(e.Field())] = fmt.Sprintf("failed on the '%s' tag", e.Tag())
	}
	return &ValidationError{Fields: fields}
}
