package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFileNotFound is returned when the input file does not exist. It is
// fatal and never retried; a failed load aborts the whole pipeline run.
var ErrFileNotFound = errors.New("input file not found")

// MissingColumnsError reports required columns absent from an input file.
// It carries every missing name so the caller can surface them all at once.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

func NewMissingColumnsError(columns []string) *MissingColumnsError {
	return &MissingColumnsError{Columns: columns}
}
