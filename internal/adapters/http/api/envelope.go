package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/evalsheet/internal/adapters/grid"
)

// timestampLayout matches ISO-8601 with milliseconds in UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// successEnvelope wraps every report payload.
type successEnvelope struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Mode      string `json:"mode"`
	Data      any    `json:"data"`
}

// failureEnvelope is returned for any failed request.
type failureEnvelope struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// Clock returns the current time; tests pin it.
type Clock func() time.Time

func timestamp(now Clock) string {
	return now().UTC().Format(timestampLayout)
}

// writeJSON encodes v before touching w, so an encoding error leaves the
// response unwritten and the caller can still send a failure envelope.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return nil
}

// writeSuccess writes the report envelope. It returns the encoding error
// without writing anything when data cannot be rendered as JSON.
func writeSuccess(w http.ResponseWriter, now Clock, mode string, data any) error {
	return writeJSON(w, http.StatusOK, successEnvelope{
		Success:   true,
		Timestamp: timestamp(now),
		Mode:      mode,
		Data:      data,
	})
}

func writeFailure(w http.ResponseWriter, now Clock, err error) {
	env := failureEnvelope{
		Success:   false,
		Error:     err.Error(),
		Timestamp: timestamp(now),
	}
	if werr := writeJSON(w, statusFor(err), env); werr != nil {
		// Only strings go into the envelope; this is unreachable in practice.
		http.Error(w, werr.Error(), http.StatusInternalServerError)
	}
}

// statusFor maps an error onto the response status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, grid.ErrSourceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
