// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dario9661s/bundles-sub000/internal/services"
	"github.com/dario9661s/bundles-sub000/internal/stores"
	"github.com/dario9661s/bundles-sub000/internal/utils"
)

// respondError maps service and store errors onto the stable API error
// codes. Anything unrecognized is an internal error; raw remote error
// text only ever surfaces in Details.
func respondError(c *gin.Context, err error) {
	var remoteErr *stores.RemoteValidationError
	var validationErr *services.ValidationError

	switch {
	case errors.Is(err, stores.ErrNotFound):
		utils.NotFoundResponse(c, "")
	case errors.Is(err, stores.ErrDuplicateTitle):
		utils.DuplicateResponse(c, "A bundle with this title already exists")
	case errors.Is(err, services.ErrDuplicateCombination):
		utils.DuplicateResponse(c, "A combination for this product set already exists")
	case errors.Is(err, services.ErrLimitExceeded):
		utils.LimitExceededResponse(c, err.Error())
	case errors.As(err, &validationErr):
		utils.ValidationFailedResponse(c, validationErr.Message, nil)
	case errors.As(err, &remoteErr):
		utils.ValidationFailedResponse(c, "The remote store rejected the record", remoteErr.Errors)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
