package braintest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes reported in the error envelope.
const (
	codeBadRequest   = "BadRequest"
	codeUnauthorized = "Unauthorized"
	codeNotFound     = "NotFound"
	codeConflict     = "Conflict"
	codeInternal     = "InternalServerError"
)

// errorBody is the envelope every failed request carries. Clients dig the
// code and message out of the nested error object.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError aborts the request with the error envelope.
func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeStoreError maps a store error onto the envelope.
func writeStoreError(c *gin.Context, err error) {
	var nf *notFoundError
	if errors.As(err, &nf) {
		writeError(c, http.StatusNotFound, codeNotFound, err.Error())
		return
	}

	var conflictErr *conflictError
	if errors.As(err, &conflictErr) {
		writeError(c, http.StatusConflict, codeConflict, err.Error())
		return
	}

	writeError(c, http.StatusInternalServerError, codeInternal, err.Error())
}

// notFoundError reports a missing resource with its service-facing message.
type notFoundError struct {
	resource string
	name     string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s %q was not found", e.resource, e.name)
}

func notFound(resource, name string) error {
	return &notFoundError{resource: resource, name: name}
}

// conflictError reports a resource that already exists.
type conflictError struct {
	resource string
	name     string
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.resource, e.name)
}

func conflict(resource, name string) error {
	return &conflictError{resource: resource, name: name}
}
