// Package errors turns unsuccessful HTTP responses into structured errors.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MinErrorStatusCode is the lowest status treated as a failure.
const MinErrorStatusCode = 400

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 64 << 10

// HTTPError represents an unsuccessful HTTP response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error (%s): %s", e.Status, e.Message)
	}
	return "HTTP error: " + e.Status
}

// ParseHTTPError returns nil for statuses below 400. Otherwise it reads the body
// and extracts a message from the common JSON shapes
// ({"error": ...}, {"message": ...}, {"description": ...}), falling back to the raw body.
func ParseHTTPError(resp *http.Response) error {
	if resp.StatusCode < MinErrorStatusCode {
		return nil
	}

	status := resp.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     status,
			Message:    fmt.Sprintf("read error response body: %v", err),
		}
	}

	bodyStr := strings.TrimSpace(string(body))

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     status,
		Body:       bodyStr,
		Message:    extractMessage(body, bodyStr),
	}
}

func extractMessage(body []byte, fallback string) string {
	var payload struct {
		Error       any    `json:"error"`
		Message     string `json:"message"`
		Description string `json:"description"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return fallback
	}

	switch v := payload.Error.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg
		}
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Description != "" {
		return payload.Description
	}

	return fallback
}

// StatusCode reports the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
