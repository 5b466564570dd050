package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	kpidomain "github.com/smallledger/arview/internal/kpi/domain"
	"github.com/smallledger/arview/internal/qbo"
	riskdomain "github.com/smallledger/arview/internal/risk/domain"
	"github.com/smallledger/arview/pkg/db/pagination"
	"gorm.io/gorm"
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

// ErrorHandlingMiddleware maps the last gin error to a JSON error envelope
// once the handler chain finishes without writing a response.
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

	if code, ok := validationCode(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "request", Code: code, Message: err.Error()},
			},
		}
	}

	switch {
	case errors.Is(err, qbo.ErrNotConnected):
		return http.StatusUnauthorized, errorPayload{
			Type:    "not_connected",
			Message: "no QuickBooks company connected",
		}
	case errors.Is(err, qbo.ErrReauthorize), errors.Is(err, qbo.ErrInvalidState):
		return http.StatusUnauthorized, errorPayload{
			Type:    "reauthorize",
			Message: "QuickBooks authorization is no longer valid",
		}
	case errors.Is(err, qbo.ErrUpstream):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: err.Error(),
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "resource not found",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: err.Error(),
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return vErr
	}
	return nil
}

func validationCode(err error) (string, bool) {
	switch {
	case errors.Is(err, pagination.ErrInvalidPage):
		return "invalid_page", true
	case errors.Is(err, pagination.ErrInvalidSize):
		return "invalid_size", true
	case errors.Is(err, riskdomain.ErrInvalidMode):
		return "invalid_mode", true
	case errors.Is(err, kpidomain.ErrInvalidWindow):
		return "invalid_window", true
	case errors.Is(err, invoicedomain.ErrInvalidAmount):
		return "invalid_amount", true
	}
	return "", false
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error", payload.Type
	case status >= http.StatusBadRequest:
		return payload.Type, payload.Type
	default:
		return "", ""
	}
}
