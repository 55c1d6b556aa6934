package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/callstats/internal/api/v1"
	httperr "github.com/aevon-lab/callstats/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgPersistFailed  = "Failed to persist call records"
)

// IngestRequest is the body of POST /v1/calls.
type IngestRequest struct {
	Records []v1.CallRecord `json:"records" yaml:"records"`
}

// IngestResponse reports how a batch was stored.
type IngestResponse struct {
	Status     string `json:"status"`
	Received   int    `json:"received"`
	Stored     int    `json:"stored"`
	Duplicates int    `json:"duplicates"`
}

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestHandler handles POST /v1/calls.
func (s *Service) IngestHandler(c *gin.Context) {
	req, payloadSize, err := s.parseBatch(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := s.validateBatch(req.Records); err != nil {
		writeError(c, err)
		return
	}

	slog.Info("[Ingestion] Received call batch",
		"records", len(req.Records),
		"payload_size", payloadSize)

	stored, err := s.persistBatch(c.Request.Context(), req.Records)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, IngestResponse{
		Status:     "accepted",
		Received:   len(req.Records),
		Stored:     stored,
		Duplicates: len(req.Records) - stored,
	})
}

// parseBatch reads the raw request body and binds it into an IngestRequest.
// Returns the raw payload size for structured logging upstream.
func (s *Service) parseBatch(c *gin.Context) (*IngestRequest, int, *ingestionError) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("[Ingestion] Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("[Ingestion] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}
	return &req, len(bodyBytes), nil
}

// validateBatch rejects the whole batch if any record fails envelope checks.
func (s *Service) validateBatch(records []v1.CallRecord) *ingestionError {
	if len(records) == 0 {
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidRecordError,
			message:    "records must not be empty",
		}
	}
	if len(records) > s.maxBatch {
		return &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidRecordError,
			message:    fmt.Sprintf("batch exceeds %d records", s.maxBatch),
			details:    map[string]interface{}{"max_batch": s.maxBatch},
		}
	}

	for i := range records {
		if err := records[i].Validate(); err != nil {
			slog.Warn("[Ingestion] Record validation failed", "index", i, "record_id", records[i].ID, "error", err)
			return &ingestionError{
				statusCode: http.StatusBadRequest,
				errorType:  httperr.HttpInvalidRecordError,
				message:    err.Error(),
				details: map[string]interface{}{
					"index": i,
					"id":    records[i].ID,
				},
			}
		}
	}
	return nil
}

// persistBatch saves the batch to the call log.
func (s *Service) persistBatch(ctx context.Context, records []v1.CallRecord) (int, *ingestionError) {
	stored, err := s.log.SaveRecords(ctx, records)
	if err != nil {
		slog.Error("[Ingestion] Failed to persist call batch", "error", err, "records", len(records))
		return 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		}
	}
	if stored < len(records) {
		slog.Info("[Ingestion] Skipped duplicate records", "duplicates", len(records)-stored)
	}
	return stored, nil
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
