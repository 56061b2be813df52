package models

import (
	"fmt"
	"strings"
)

// FieldError reports the first invalid field of a request payload.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InUseError is returned when a template cannot be deleted because active
// trigger actions still reference it. Triggers lists the blocking triggers.
type InUseError struct {
	Name     string
	Triggers []string
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("template %q is in use by triggers: %s", e.Name, strings.Join(e.Triggers, ", "))
}
