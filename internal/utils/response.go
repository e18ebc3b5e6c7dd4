// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Stable error codes of the API surface. The admin UI keys its
// messaging off these; raw remote error text only ever travels in
// Details.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeDuplicate     = "DUPLICATE"
	CodeLimitExceeded = "LIMIT_EXCEEDED"
	CodeInternal      = "INTERNAL_ERROR"
	CodeBadRequest    = "BAD_REQUEST"
	CodeUnauthorized  = "UNAUTHORIZED"
)

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{
		Success: true,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = "Invalid request"
	}
	ErrorResponse(c, http.StatusBadRequest, CodeBadRequest, message, details)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	ErrorResponse(c, http.StatusUnauthorized, CodeUnauthorized, message, nil)
}

func NotFoundResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	ErrorResponse(c, http.StatusNotFound, CodeNotFound, message, nil)
}

func DuplicateResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, CodeDuplicate, message, nil)
}

func LimitExceededResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, CodeLimitExceeded, message, nil)
}

func ValidationFailedResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = "Validation failed"
	}
	ErrorResponse(c, http.StatusBadRequest, CodeValidation, message, details)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	ValidationFailedResponse(c, "Validation failed", errors)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, CodeInternal, message, nil)
}

func GetShopFromContext(c *gin.Context) (string, bool) {
	if shop, exists := c.Get("shop"); exists {
		if shopStr, ok := shop.(string); ok {
			return shopStr, true
		}
	}
	return "", false
}
