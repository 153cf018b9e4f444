// Package response renders the uniform JSON envelope used by every endpoint.
package response

import (
	"net/http"

	"github.com/Agus3160/blog-web-app-server-go/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// Body is the success envelope.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorBody is the failure envelope. Name and Message come from the domain
// error's client-facing fields, never from internal diagnostics.
type ErrorBody struct {
	Success        bool   `json:"success"`
	Name           string `json:"name,omitempty"`
	Message        string `json:"message,omitempty"`
	HTTPStatusCode int    `json:"httpStatusCode"`
}

func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Body{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error renders a domain error. Unrecognized errors collapse to a generic
// 500 envelope.
func Error(c *gin.Context, err error) {
	appErr := apperror.From(err)
	c.JSON(appErr.HTTPStatus, ErrorBody{
		Success:        false,
		Name:           appErr.Name,
		Message:        appErr.ClientMessage,
		HTTPStatusCode: appErr.HTTPStatus,
	})
}
