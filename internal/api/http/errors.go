package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/adapter"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/providers/ledger"
)

// statusFor maps a domain error to an HTTP status
func statusFor(err error) int {
	var verr *registry.ValidationError
	var gerr *ledger.GatewayError
	switch {
	case errors.As(err, &verr), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, adapter.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, adapter.ErrNotRegistered), errors.Is(err, adapter.ErrAnchorChanged):
		return http.StatusConflict
	case errors.As(err, &gerr),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrTooManyRequests),
		errors.Is(err, ledger.ErrUnknownTx),
		errors.Is(err, ledger.ErrInvalidRequest):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// respondError writes err as {"error": ...} with its mapped status
func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var verr *registry.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.Error(err),
		)
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }
