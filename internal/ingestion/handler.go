package ingestion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/headcount-lab/headcount/internal/api/v1"
	"github.com/headcount-lab/headcount/internal/core/demographics"
	httperr "github.com/headcount-lab/headcount/internal/core/errors"
	"github.com/headcount-lab/headcount/internal/core/storage"
	"github.com/headcount-lab/headcount/internal/metrics"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgPersistFailed  = "Failed to persist detection"
	msgListFailed     = "Failed to list detections"

	msgDetailedStored = "Age-gender data successfully processed into DetectionData"
	msgSimpleStored   = "Simple detection data successfully processed"

	recentWindow = 24 * time.Hour
)

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

// IngestResponse is the body returned for an accepted detection.
type IngestResponse struct {
	Status  string             `json:"status"`
	Data    v1.DetectionRecord `json:"data"`
	Message string             `json:"message"`
}

// IngestHandler handles HTTP POST /v1/detections.
func (s *Service) IngestHandler(c *gin.Context) {
	det, payloadSize, err := s.parseDetection(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := validateDetection(det); err != nil {
		writeError(c, err)
		return
	}

	form := det.Form()
	evt := demographics.RawEvent{Timestamp: det.Timestamp.UTC(), Buckets: det.Buckets()}

	slog.Info("Received Detection",
		"timestamp", evt.Timestamp,
		"form", form,
		"total", evt.Buckets.Total(),
		"payload_size", payloadSize)

	if err := s.persistDetection(c.Request.Context(), &evt); err != nil {
		writeError(c, err)
		return
	}

	metrics.IngestedEvents.WithLabelValues(form).Inc()
	if s.invalidator != nil {
		s.invalidator.InvalidateAll()
	}

	message := msgDetailedStored
	if form == v1.FormSimple {
		message = msgSimpleStored
	}
	c.JSON(http.StatusCreated, IngestResponse{
		Status:  "success",
		Data:    v1.NewDetectionRecord(evt),
		Message: message,
	})
}

// ListRecentHandler handles GET /v1/detections: raw events of the last
// 24 hours, newest first.
func (s *Service) ListRecentHandler(c *gin.Context) {
	now := s.nowFn()
	events, err := s.store.ListRawEvents(c.Request.Context(), now.Add(-recentWindow), now.Add(time.Millisecond))
	if err != nil {
		slog.Error("Failed to list recent detections", "error", err)
		writeError(c, storeError(err, msgListFailed))
		return
	}

	records := make([]v1.DetectionRecord, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		records = append(records, v1.NewDetectionRecord(events[i]))
	}
	c.JSON(http.StatusOK, records)
}

// parseDetection reads the raw request body and binds it into a Detection.
// Returns the parsed payload and the raw payload size (used for structured logging upstream).
func (s *Service) parseDetection(c *gin.Context) (*v1.Detection, int, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
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

	var det v1.Detection
	if err := c.ShouldBindJSON(&det); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
			details:    err.Error(),
		}
	}

	return &det, len(bodyBytes), nil
}

// validateDetection maps payload validation failures onto their error kinds.
func validateDetection(det *v1.Detection) *ingestionError {
	err := det.Validate()
	if err == nil {
		return nil
	}

	slog.Warn("Detection validation failed", "error", err)
	errorType := httperr.HttpValidationError
	if errors.Is(err, v1.ErrInvalidPayloadFormat) {
		errorType = httperr.HttpInvalidPayloadError
	}
	return &ingestionError{
		statusCode: http.StatusBadRequest,
		errorType:  errorType,
		message:    err.Error(),
	}
}

// persistDetection saves the event to the backing store.
func (s *Service) persistDetection(ctx context.Context, evt *demographics.RawEvent) *ingestionError {
	if err := s.store.SaveRawEvent(ctx, evt); err != nil {
		slog.Error("Failed to persist detection", "error", err, "timestamp", evt.Timestamp)
		return storeError(err, msgPersistFailed)
	}
	return nil
}

func storeError(err error, message string) *ingestionError {
	if errors.Is(err, storage.ErrTransient) {
		return &ingestionError{
			statusCode: http.StatusServiceUnavailable,
			errorType:  httperr.HttpTransientStoreError,
			message:    message,
		}
	}
	return &ingestionError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    message,
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
