package utils

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every successful response
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorEnvelope is the body of every failed response
type ErrorEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// JSONResponse writes data wrapped in an Envelope
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{Status: status, Message: message, Data: data})
}

// JSONError writes an ErrorEnvelope; a nil err reports the message itself
func JSONError(c *gin.Context, status int, err error, message string) {
	detail := message
	if err != nil {
		detail = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Status: status, Message: message, Error: detail})
}
