package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/spinmill/milltrack/internal/order/domain"
	proddomain "github.com/spinmill/milltrack/internal/production/domain"
	"github.com/spinmill/milltrack/internal/production/session"
	"gorm.io/gorm"
)

var (
	ErrMissingOrg     = errors.New("missing_org")
	ErrInvalidRequest = errors.New("invalid_request")
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware renders the last gin error as a structured JSON
// payload. Validation failures carry the machine/shift coordinates so the
// client can surface them inline.
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
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

// AbortWithError records err for the error middleware and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var missingOrder *proddomain.MissingOrderError
	if errors.As(err, &missingOrder) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    "missing_order_for_quantity",
			Message: "a shift with production requires a sales order",
			Details: missingOrder,
		}
	}

	var missingSpec *proddomain.MissingSpecError
	if errors.As(err, &missingSpec) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    "missing_spec_for_quantity",
			Message: "a spinning shift with production requires count and hank",
			Details: missingSpec,
		}
	}

	var unsaved *session.UnsavedSectionsError
	if errors.As(err, &unsaved) {
		return http.StatusBadRequest, errorPayload{
			Type:    "precondition_error",
			Code:    "unsaved_sections",
			Message: "every section must be saved before submit",
			Details: unsaved,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Code:    err.Error(),
			Message: "invalid request",
		}
	case isPreconditionError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "precondition_error",
			Code:    err.Error(),
			Message: "submit preconditions not met",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Code:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, proddomain.ErrDayExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    "production_day_exists",
			Message: "production for this date was already submitted",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Code:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrMissingOrg),
		errors.Is(err, proddomain.ErrUnknownSection),
		errors.Is(err, proddomain.ErrSectionShape),
		errors.Is(err, proddomain.ErrInvalidDate),
		errors.Is(err, proddomain.ErrInvalidOrganization),
		errors.Is(err, orderdomain.ErrInvalidOrganization),
		errors.Is(err, orderdomain.ErrInvalidOrderNumber),
		errors.Is(err, orderdomain.ErrInvalidRealisation),
		errors.Is(err, session.ErrInvalidOrganization):
		return true
	default:
		return false
	}
}

func isPreconditionError(err error) bool {
	switch {
	case errors.Is(err, session.ErrMissingDate),
		errors.Is(err, session.ErrFutureDate),
		errors.Is(err, session.ErrNoSelectedOrders):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
