package common

import (
	"strconv"
	"strings"
)

// ParseID parses a positive integer identifier taken from a path parameter
func ParseID(raw, fieldName string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, NewValidationError(fieldName, "is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewValidationError(fieldName, "must be a positive integer")
	}
	return id, nil
}

// ValidateRequiredString validates required string fields
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fieldName, "is required")
	}
	return nil
}

// ValidateNonNegativeFloat validates monetary values
func ValidateNonNegativeFloat(value float64, fieldName string) error {
	if value < 0 {
		return NewValidationError(fieldName, "cannot be negative")
	}
	return nil
}
