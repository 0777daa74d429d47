package response

import (
	"errors"
	"net/http"

	"ledger-service/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the structured error envelope returned for every failure:
// {"error": {"code": "...", "message": "..."}}.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the stable error code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK sends a 200 response with the entity as the body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the entity as the body.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent sends a 204 response with no body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends a structured error response. It maps *apperror.AppError to its
// HTTP status and code; anything else becomes an opaque 500. Internal causes
// are never written to the body.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorBody{
			Error: ErrorDetail{
				Code:    appErr.Code,
				Message: appErr.Message,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorBody{
		Error: ErrorDetail{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
		},
	})
}
