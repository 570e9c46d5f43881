// response.go - Uniform JSON envelope used by every API response

package response

import (
	"log/slog"
	"net/http"

	"cafesantander/apperr"

	"github.com/gin-gonic/gin"
)

// Problem is the failure variant of an Envelope.
type Problem struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Envelope is the tagged result shared by server and client:
// Success=true carries Data, Success=false carries Error.
type Envelope[T any] struct {
	Success bool     `json:"success"`
	Data    T        `json:"data"`
	Error   *Problem `json:"error,omitempty"`
	Message string   `json:"message,omitempty"`
}

// bare is the wire shape of responses that carry no payload.
type bare struct {
	Success bool     `json:"success"`
	Error   *Problem `json:"error,omitempty"`
	Message string   `json:"message,omitempty"`
}

// Err turns a failed envelope back into an *apperr.Error. It returns nil on success.
func (e Envelope[T]) Err() error {
	if e.Success {
		return nil
	}
	if e.Error == nil {
		return &apperr.Error{Kind: apperr.KindUnexpected, Message: "malformed response"}
	}
	return &apperr.Error{Kind: e.Error.Kind, Message: e.Error.Message}
}

// OK writes a 200 success envelope.
func OK[T any](c *gin.Context, data T, message string) {
	c.JSON(http.StatusOK, Envelope[T]{Success: true, Data: data, Message: message})
}

// Created writes a 201 success envelope.
func Created[T any](c *gin.Context, data T, message string) {
	c.JSON(http.StatusCreated, Envelope[T]{Success: true, Data: data, Message: message})
}

// Message writes a 200 success envelope without payload.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, bare{Success: true, Message: message})
}

// Fail translates err into a failure envelope with the matching status code.
// Unexpected errors are logged here and surface as a generic message.
func Fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindUnexpected {
		slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
	}
	Abort(c, apperr.Status(kind), kind, apperr.MessageOf(err))
}

// Abort writes a failure envelope and stops the handler chain. Used by middleware.
func Abort(c *gin.Context, status int, kind apperr.Kind, message string) {
	c.AbortWithStatusJSON(status, bare{
		Success: false,
		Error:   &Problem{Kind: kind, Message: message},
	})
}
