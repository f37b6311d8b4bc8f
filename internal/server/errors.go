package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/bingkai/internal/invoice/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
		}
	case isResourceError(err):
		return http.StatusBadGateway, errorPayload{
			Type:    "resource_unavailable",
			Message: resourceErrorMessage(err),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many invoice requests",
		}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isResourceError(err error) bool {
	return errors.Is(err, invoicedomain.ErrTemplateNotFound) ||
		errors.Is(err, invoicedomain.ErrInvalidTemplate) ||
		errors.Is(err, invoicedomain.ErrFontNotFound) ||
		errors.Is(err, invoicedomain.ErrInvalidFont)
}

// resourceErrorMessage keeps the ref in the message so operators can tell
// which asset is missing.
func resourceErrorMessage(err error) string {
	switch {
	case errors.Is(err, invoicedomain.ErrTemplateNotFound),
		errors.Is(err, invoicedomain.ErrFontNotFound):
		return err.Error()
	default:
		return "invoice resource is invalid"
	}
}

// classifyErrorForLog returns the error type and code logged with each request.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	_, payload := mapError(err)
	code := payload.Type
	if vErr := asValidationErrors(err); vErr != nil && len(vErr.Errors) > 0 {
		code = vErr.Errors[0].Code
	}
	switch {
	case errors.Is(err, invoicedomain.ErrTemplateNotFound):
		code = invoicedomain.ErrTemplateNotFound.Error()
	case errors.Is(err, invoicedomain.ErrInvalidTemplate):
		code = invoicedomain.ErrInvalidTemplate.Error()
	case errors.Is(err, invoicedomain.ErrFontNotFound):
		code = invoicedomain.ErrFontNotFound.Error()
	case errors.Is(err, invoicedomain.ErrInvalidFont):
		code = invoicedomain.ErrInvalidFont.Error()
	case errors.Is(err, invoicedomain.ErrSequence):
		code = invoicedomain.ErrSequence.Error()
	case errors.Is(err, context.Canceled):
		code = "request_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		code = "request_timeout"
	}
	return payload.Type, code
}
