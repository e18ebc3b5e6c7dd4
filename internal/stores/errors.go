// internal/stores/errors.go
package stores

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dario9661s/bundles-sub000/internal/shopify"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateTitle = errors.New("a bundle with this title already exists")
)

// RemoteValidationError carries the remote store's field-level errors
// verbatim. Handlers surface the messages in the error envelope's
// details, never as the control-flow signal.
type RemoteValidationError struct {
	Errors []shopify.UserError
}

func (e *RemoteValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ue := range e.Errors {
		if len(ue.Field) > 0 {
			msgs = append(msgs, fmt.Sprintf("%s: %s", strings.Join(ue.Field, "."), ue.Message))
		} else {
			msgs = append(msgs, ue.Message)
		}
	}
	return "remote validation failed: " + strings.Join(msgs, "; ")
}

// classifyUserErrors maps a mutation's user errors to a typed error.
// TAKEN on the handle is the one duplicate signal the remote store
// gives us; everything else is field validation.
func classifyUserErrors(userErrors []shopify.UserError) error {
	if len(userErrors) == 0 {
		return nil
	}
	for _, ue := range userErrors {
		if ue.Code == "TAKEN" {
			return ErrDuplicateTitle
		}
	}
	return &RemoteValidationError{Errors: userErrors}
}
