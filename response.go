// response.go

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Total   *int64      `json:"total,omitempty"`
	Page    *int        `json:"page,omitempty"`
	Pages   *int        `json:"pages,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func okPaged(c *gin.Context, data interface{}, count int, total int64, page, pages int) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
		Count:   &count,
		Total:   &total,
		Page:    &page,
		Pages:   &pages,
	})
}

// apiError is a controller-level failure with a user-facing message.
// Anything else reaching the error middleware is reported as a generic 500.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func badRequest(format string, args ...interface{}) *apiError {
	return &apiError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func unauthorized(msg string) *apiError {
	return &apiError{Status: http.StatusUnauthorized, Message: msg}
}

func forbidden(msg string) *apiError {
	return &apiError{Status: http.StatusForbidden, Message: msg}
}

func notFound(msg string) *apiError {
	return &apiError{Status: http.StatusNotFound, Message: msg}
}

func conflict(msg string) *apiError {
	return &apiError{Status: http.StatusConflict, Message: msg}
}

// errorMiddleware normalizes errors pushed with c.Error into the response
// envelope. Runs last so it sees everything the handler chain accumulated.
func errorMiddleware(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, Response{Success: false, Error: apiErr.Message})
		return
	}

	slog.Error("unhandled error", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "Internal server error"})
}

func abortWith(c *gin.Context, err *apiError) {
	c.AbortWithStatusJSON(err.Status, Response{Success: false, Error: err.Message})
}
