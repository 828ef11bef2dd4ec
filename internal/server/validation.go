package server

import (
	"encoding/json"
	"html"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult contains validation results
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// QR code bounds in pixels
const (
	minQRSize     = 64
	maxQRSize     = 1024
	defaultQRSize = 256
)

// respondWithValidationError sends a structured validation error response
func (ps *PreviewServer) respondWithValidationError(w http.ResponseWriter, r *http.Request, errors []ValidationError) {
	ps.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"errors": errors,
	}).Warn("Validation failed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)

	ps.respondJSON(w, ValidationResult{
		Valid:  false,
		Errors: errors,
	})
}

// respondWithErrorPage logs the failure and sends a minimal HTML page. Only
// message reaches the client; err stays in the log.
func (ps *PreviewServer) respondWithErrorPage(w http.ResponseWriter, r *http.Request, statusCode int, message string, err error) {
	logEntry := ps.logger.WithFields(logrus.Fields{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status_code": statusCode,
		"message":     message,
	})

	if err != nil {
		logEntry = logEntry.WithError(err)
	}

	if statusCode >= 500 {
		logEntry.Error("Server error")
	} else {
		logEntry.Warn("Client error")
	}

	writeErrorPage(w, statusCode, message)
}

func writeErrorPage(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	w.Write([]byte(`<!DOCTYPE html>
<html lang="en">
  <head><meta charset="UTF-8" /><title>` + strconv.Itoa(statusCode) + ` ` + http.StatusText(statusCode) + `</title></head>
  <body><h1>` + http.StatusText(statusCode) + `</h1><p>` + html.EscapeString(message) + `</p></body>
</html>
`))
}

// respondJSON encodes v as the response body
func (ps *PreviewServer) respondJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ps.logger.WithError(err).Error("Failed to encode JSON response")
	}
}

// validateQRSize parses the optional size parameter of /qr
func validateQRSize(raw string) (int, *ValidationError) {
	if raw == "" {
		return defaultQRSize, nil
	}

	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &ValidationError{
			Field:   "size",
			Message: "Size must be a valid integer",
			Code:    "INVALID_SIZE_FORMAT",
		}
	}

	if size < minQRSize || size > maxQRSize {
		return 0, &ValidationError{
			Field:   "size",
			Message: "Size must be between 64 and 1024 pixels",
			Code:    "SIZE_OUT_OF_RANGE",
		}
	}

	return size, nil
}
