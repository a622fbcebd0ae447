package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEmail is returned when an email address fails the format check
var ErrInvalidEmail = errors.New("invalid email format")

// MissingFieldsError is returned when a request omits required fields.
// Fields lists the field names a caller must supply.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}
