package crawler

import (
	"errors"
	"fmt"
)

// MarkupError reports that a page did not have the shape the extractor
// expects: a required element or attribute is missing, or a label or vote
// count does not match its pattern. It is not retried.
type MarkupError struct {
	// Element names the selector or attribute that was being read.
	Element string

	// Detail describes what was wrong with it.
	Detail string

	// Err is the underlying decode error, if any.
	Err error
}

// Error implements the error interface.
func (e *MarkupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected markup at %s: %s: %v", e.Element, e.Detail, e.Err)
	}
	return fmt.Sprintf("unexpected markup at %s: %s", e.Element, e.Detail)
}

// Unwrap returns the underlying error.
func (e *MarkupError) Unwrap() error {
	return e.Err
}

// IsMarkupError reports whether err is or wraps a *MarkupError.
func IsMarkupError(err error) bool {
	var markupErr *MarkupError
	return errors.As(err, &markupErr)
}

func markupError(element, detail string) *MarkupError {
	return &MarkupError{Element: element, Detail: detail}
}
