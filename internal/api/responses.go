package api

import (
	"net/http"

	"blood-sea-api/internal/common/errors"
	"blood-sea-api/internal/common/validation"

	"github.com/gin-gonic/gin"
)

// errorBody is the error half of the response envelope.
type errorBody struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// envelope is the uniform response shape. Either Data or Error is set,
// never both; Errors carries field-level validation problems.
type envelope struct {
	Success bool                         `json:"success"`
	Message string                       `json:"message,omitempty"`
	Data    interface{}                  `json:"data,omitempty"`
	Error   *errorBody                   `json:"error,omitempty"`
	Errors  []validation.ValidationError `json:"errors,omitempty"`
}

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func respondCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Message: message, Data: data})
}

func respondValidationErrors(c *gin.Context, fieldErrors []validation.ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, envelope{
		Success: false,
		Message: "request validation failed",
		Error:   &errorBody{Code: errors.ErrCodeValidationFailed, Message: "request validation failed"},
		Errors:  fieldErrors,
	})
}

func respondClassified(c *gin.Context, classified errors.Classified) {
	c.AbortWithStatusJSON(classified.Status, envelope{
		Success: false,
		Message: classified.Message,
		Error:   &errorBody{Code: classified.Code, Message: classified.Message},
	})
}
