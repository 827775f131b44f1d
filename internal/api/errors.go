package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"vitibrasil/internal/logging"
	"vitibrasil/internal/retrieval"
)

// ValidationError is bad user input; it is answered with 400.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("encode response", "error", err)
	}
}

// respondError maps err to a status, logs it and writes the JSON body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := ErrorResponse{Error: "internal error", Code: "internal"}

	var (
		ve *ValidationError
		du *retrieval.DataUnavailableError
	)
	switch {
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		body = ErrorResponse{Error: ve.Message, Code: ve.Code}
	case errors.As(err, &du):
		body = ErrorResponse{Error: "Failed to retrieve " + du.Domain + " data.", Code: "data_unavailable"}
	}

	logger := logging.FromContext(r.Context()).With(
		"path", r.URL.Path,
		"status", status,
		"code", body.Code,
	)
	if status >= 500 {
		logger.Error("request error", "error", err)
	} else {
		logger.Warn("request rejected", "error", err)
	}

	respondJSON(w, status, body)
}
