package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/run651/rakumart-1688/internal/domain"
	"github.com/run651/rakumart-1688/internal/infrastructure/logger"
	"github.com/run651/rakumart-1688/internal/usecase"
)

const (
	serviceName = "rakumart-1688"
	version     = "1.0.0"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog *usecase.CatalogService
	orders  domain.OrderClient
}

// NewHandler creates a new HTTP handler
func NewHandler(catalog *usecase.CatalogService, orders domain.OrderClient) *Handler {
	return &Handler{catalog: catalog, orders: orders}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": version,
	})
}

// errorStatus maps a classified error onto a status code and error name.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, domain.ErrNoResult):
		return http.StatusNotFound, "no_result"
	case errors.Is(err, domain.ErrTransportTimeout):
		return http.StatusGatewayTimeout, "upstream_timeout"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusBadGateway, "invalid_credentials"
	case errors.Is(err, domain.ErrAPILogicalFailure):
		return http.StatusBadGateway, "upstream_failure"
	case errors.Is(err, domain.ErrTransportNetwork),
		errors.Is(err, domain.ErrResponseDecode),
		errors.Is(err, domain.ErrUnexpectedEnvelope):
		return http.StatusBadGateway, "upstream_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, name := errorStatus(err)
	_ = c.Error(err)
	logger.FromGin(c).Debug("request failed", zap.String("error_kind", name), zap.Error(err))
	c.JSON(status, ErrorResponse{Error: name, Message: err.Error()})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_request", Message: err.Error()})
}
