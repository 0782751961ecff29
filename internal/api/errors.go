//-------------------------------------------------------------------------
//
// pgEdge Sales Dashboard
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pgEdge/pgedge-salesdash/internal/filter"
	"github.com/pgEdge/pgedge-salesdash/internal/logging"
)

// Error is an error with an HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NotFound returns a 404 error for the given request URI.
func NotFound(uri string) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Can't find %s on this server!", uri),
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Errors  []filter.Issue `json:"errors,omitempty"`
}

// handleErrors converts the last error recorded by a handler into a JSON
// response. Validation errors become 400, *Error keeps its status and
// anything else is a 500 carrying the raw message.
func handleErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}
		err := last.Err

		var verr *filter.ValidationError
		var apiErr *Error
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Validation Error",
				Errors:  verr.Issues,
			})
		case errors.As(err, &apiErr):
			c.JSON(apiErr.Status, ErrorResponse{Message: apiErr.Message})
		default:
			requestLogger(c).Error().
				Err(err).
				Str("path", c.Request.URL.Path).
				Msg("Request failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: err.Error()})
		}
	}
}

// recovery turns a panic into a 500 response.
func recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.Error().
			Str("request_id", c.GetString(requestIDKey)).
			Interface("panic", recovered).
			Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
			Message: fmt.Sprint(recovered),
		})
	})
}
