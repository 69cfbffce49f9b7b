package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/markmiedema/nexuscheck-sub005/internal/db"
	"github.com/markmiedema/nexuscheck-sub005/internal/logger"
	"go.uber.org/zap"
)

// CommonServices holds the shared dependencies handlers need.
type CommonServices struct {
	db     db.Querier
	logger *zap.Logger
}

// NewCommonServices creates a new CommonServices instance.
func NewCommonServices(queries db.Querier, log *zap.Logger) *CommonServices {
	if log == nil {
		log = logger.Log
	}
	return &CommonServices{
		db:     queries,
		logger: log,
	}
}

// GetDB returns the database querier.
func (s *CommonServices) GetDB() db.Querier {
	return s.db
}

// GetLogger returns the logger.
func (s *CommonServices) GetLogger() *zap.Logger {
	return s.logger
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// sendError logs the error and sends a JSON error response, carrying the
// request's correlation ID so failures can be traced in the logs.
func sendError(c *gin.Context, statusCode int, message string, err error) {
	correlationID := ""
	if id, exists := c.Get("correlationID"); exists {
		correlationID, _ = id.(string)
	}

	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("correlation_id", correlationID),
	)

	response := struct {
		Error         string `json:"error"`
		CorrelationID string `json:"correlation_id,omitempty"`
	}{
		Error:         message,
		CorrelationID: correlationID,
	}

	c.JSON(statusCode, response)
}

// handleDBError maps database errors to HTTP status codes.
func handleDBError(c *gin.Context, err error, notFoundMsg string) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		sendError(c, http.StatusNotFound, notFoundMsg, err)
	default:
		sendError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// sendSuccess sends a success response.
func sendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}
