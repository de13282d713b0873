package helper

import "fmt"

// NewError wraps an error with a short context string. The context reads as
// the action that failed, e.g. NewError("scan", err).
func NewError(context string, err error) error {
	if err == nil {
		return fmt.Errorf("%v", context)
	}
	return fmt.Errorf("%v: %w", context, err)
}
