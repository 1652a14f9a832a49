package http

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the response shape shared by every endpoint.
type Envelope struct {
	Status  bool   `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func OK(c *gin.Context, code int, data any) {
	c.JSON(code, Envelope{Status: true, Data: data})
}

func OKMessage(c *gin.Context, code int, message string) {
	c.JSON(code, Envelope{Status: true, Message: message})
}

func Fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{Status: false, Message: message})
}
