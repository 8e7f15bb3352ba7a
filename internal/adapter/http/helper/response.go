package helper

import (
	"net/http"

	. "todoclient/internal/adapter/http/validation"
	"todoclient/internal/core/model/response"

	"github.com/gin-gonic/gin"
)

// SendSuccess writes data as the bare JSON body, the way the remote API does.
func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendValidationError(c *gin.Context, err error) {
	validationErrors := FormatValidationErrors(err)
	SendError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", validationErrors)
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	errors := []response.ValidationError{
		{
			Field:   "server",
			Message: message,
		},
	}

	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", errors, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	errors := []response.ValidationError{
		{
			Field:   field,
			Message: message,
		},
	}

	SendError(c, http.StatusBadRequest, "BAD_REQUEST", errors)
}

func SendNotFoundError(c *gin.Context, message string) {
	errors := []response.ValidationError{
		{
			Field:   "resource",
			Message: message,
		},
	}

	SendError(c, http.StatusNotFound, "NOT_FOUND", errors)
}

// SendUnavailableError reports an injected failure.
func SendUnavailableError(c *gin.Context, operation string) {
	errors := []response.ValidationError{
		{
			Field:   operation,
			Message: "injected failure",
		},
	}

	SendError(c, http.StatusServiceUnavailable, "UNAVAILABLE", errors)
}
