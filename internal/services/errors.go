// internal/services/errors.go
package services

import "errors"

var (
	ErrLimitExceeded        = errors.New("batch size exceeds the allowed maximum")
	ErrDuplicateCombination = errors.New("a combination for this product set already exists")
	ErrUploadTimeout        = errors.New("media asset did not become resolvable within the retry budget")
)

// ValidationError marks caller input that violates a documented
// constraint, as opposed to remote field validation which is typed in
// the stores package.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(message string) error {
	return &ValidationError{Message: message}
}
