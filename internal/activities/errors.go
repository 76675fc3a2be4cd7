package activities

import (
	"fmt"
	"strings"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidActivityError is returned when an activity submission is structurally
// incomplete or malformed. It always carries field-level detail.
type InvalidActivityError struct {
	Fields []FieldError
}

func (e *InvalidActivityError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s %s", f.Field, f.Message)
	}
	return "invalid activity: " + strings.Join(msgs, "; ")
}

// StorageUnavailableError indicates the event store could not complete a read
// or write. It is the only error class callers should map to a server fault.
type StorageUnavailableError struct {
	Op  string
	Err error
}

func (e *StorageUnavailableError) Error() string {
	return fmt.Sprintf("storage unavailable during %s: %v", e.Op, e.Err)
}

func (e *StorageUnavailableError) Unwrap() error {
	return e.Err
}

// NewStorageUnavailableError wraps a resource-level storage failure.
func NewStorageUnavailableError(op string, err error) *StorageUnavailableError {
	return &StorageUnavailableError{Op: op, Err: err}
}
