package dataset

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidSubsetName = errors.New("invalid subset name")
	ErrAnnotationParse   = errors.New("annotation parse error")
	ErrIndexOutOfRange   = errors.New("index out of range")
)

// ParseError reports a missing or malformed field in an annotation file.
type ParseError struct {
	File  string
	Field string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: field %s: %v", e.File, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s: missing field %s", e.File, e.Field)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func (e *ParseError) Is(target error) bool {
	return target == ErrAnnotationParse
}
