package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/V4T54L/bbf-logging/internal/adapter/api/middleware"
	"github.com/V4T54L/bbf-logging/internal/adapter/api/response"
	"github.com/V4T54L/bbf-logging/internal/adapter/metrics"
	"github.com/V4T54L/bbf-logging/internal/domain"
)

// EventIngester is the use case behind the ingest endpoint.
type EventIngester interface {
	Ingest(ctx context.Context, payload domain.Payload) (domain.EventRecord, error)
}

// EventReporter receives a count of accepted events.
type EventReporter interface {
	ReportEvents(count int)
}

var errUnsupportedEncoding = errors.New("unsupported content encoding")

// IngestHandler handles HTTP requests for event ingestion.
type IngestHandler struct {
	useCase      EventIngester
	logger       *slog.Logger
	maxEventSize int64
	timeout      time.Duration
	metrics      *metrics.IngestMetrics
	reporter     EventReporter
}

// NewIngestHandler creates a new IngestHandler. A zero timeout leaves the
// request context as is; m and reporter may be nil.
func NewIngestHandler(uc EventIngester, logger *slog.Logger, maxEventSize int64, timeout time.Duration, m *metrics.IngestMetrics, reporter EventReporter) *IngestHandler {
	return &IngestHandler{
		useCase:      uc,
		logger:       logger,
		maxEventSize: maxEventSize,
		timeout:      timeout,
		metrics:      m,
		reporter:     reporter,
	}
}

// ServeHTTP processes one event submission.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	if !isJSONContentType(r.Header.Get("Content-Type")) {
		h.count(metrics.StatusUnsupportedMedia)
		response.Error(w, http.StatusUnsupportedMediaType, "Unsupported Media Type")
		return
	}

	// Enforce max body size
	r.Body = http.MaxBytesReader(w, r.Body, h.maxEventSize)

	raw, err := h.readBody(w, r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.count(metrics.StatusTooLarge)
			response.Error(w, http.StatusRequestEntityTooLarge, "Payload Too Large")
		case errors.Is(err, errUnsupportedEncoding):
			h.count(metrics.StatusUnsupportedMedia)
			response.Error(w, http.StatusUnsupportedMediaType, "Unsupported Media Type")
		default:
			h.count(metrics.StatusMalformed)
			response.Error(w, http.StatusBadRequest, "Malformed Payload")
		}
		return
	}

	payload, err := DecodePayload(raw)
	if err != nil {
		h.logger.Warn("rejected malformed payload", "error", err, "request_id", middleware.RequestIDFromContext(r.Context()))
		h.count(metrics.StatusMalformed)
		response.Error(w, http.StatusBadRequest, "Malformed Payload")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	record, err := h.useCase.Ingest(ctx, payload)
	if err != nil {
		h.logger.Error("failed to ingest event", "error", err, "request_id", middleware.RequestIDFromContext(r.Context()))
		h.count(metrics.StatusWriteFailure)
		if errors.Is(err, domain.ErrWriteFailure) {
			response.Error(w, http.StatusInternalServerError, "Write Failure")
			return
		}
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.count(metrics.StatusAccepted)
	if h.metrics != nil {
		h.metrics.BytesTotal.Add(float64(len(raw)))
	}
	if h.reporter != nil {
		h.reporter.ReportEvents(1)
	}
	h.logger.Debug("event logged", "event_type", record.EventType, "event_id", record.EventID)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Logged"))
}

// readBody returns the request body, decompressing gzip-encoded bodies.
func (h *IngestHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding"))) {
	case "", "identity":
		return io.ReadAll(r.Body)
	case "gzip":
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, fmt.Errorf("invalid gzip body: %w", err)
		}
		defer zr.Close()
		// The decompressed size is bounded as well.
		return io.ReadAll(http.MaxBytesReader(w, zr, h.maxEventSize))
	default:
		return nil, errUnsupportedEncoding
	}
}

func (h *IngestHandler) count(status string) {
	if h.metrics != nil {
		h.metrics.EventsTotal.WithLabelValues(status).Inc()
	}
}

// DecodePayload parses raw as exactly one JSON object. Any other input wraps
// domain.ErrMalformedPayload.
func DecodePayload(raw []byte) (domain.Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	var payload domain.Payload
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: body is not a JSON object", domain.ErrMalformedPayload)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON object", domain.ErrMalformedPayload)
	}
	return payload, nil
}

func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
