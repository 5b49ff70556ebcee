package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// SSE event names of the streamed search.
const (
	EventStatus   = "status"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

var errStreamingUnsupported = errors.New("streaming not supported")

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errStreamingUnsupported
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(requestID string, err error) {
	s.WriteEvent(EventError, ErrorResponse{ //nolint:errcheck
		Error:     err.Error(),
		Code:      errorCode(err),
		RequestID: requestID,
	})
}

// WriteComplete sends a completion event
func (s *SSEWriter) WriteComplete(requestID, status string) {
	s.WriteEvent(EventComplete, map[string]string{ //nolint:errcheck
		"request_id": requestID,
		"status":     status,
	})
}
