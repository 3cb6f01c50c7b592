package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/eleven-am/genkit/internal/generator"
	"github.com/eleven-am/genkit/internal/logger"
	"github.com/eleven-am/genkit/internal/model"
	"github.com/eleven-am/genkit/internal/render"
	"github.com/eleven-am/genkit/internal/store"
)

// OperatorHeader carries the name recorded as create_by/update_by.
const OperatorHeader = "X-Operator"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.API().WithError(err).Warn("Failed to encode response")
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeServiceError maps service errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR", Fields: verr.Fields})
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case store.IsDuplicate(err):
		writeError(w, http.StatusConflict, "DUPLICATE", err.Error())
	case errors.Is(err, generator.ErrStructureNotFound):
		writeError(w, http.StatusUnprocessableEntity, "STRUCTURE_NOT_FOUND", err.Error())
	case errors.Is(err, render.ErrUnknownCategory):
		writeError(w, http.StatusUnprocessableEntity, "UNKNOWN_CATEGORY", err.Error())
	case r.Context().Err() != nil:
		writeError(w, http.StatusServiceUnavailable, "CANCELED", "request canceled")
	default:
		logger.API().WithError(err).Error("Request failed", "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// splitList splits a comma separated path parameter, dropping empty items.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIDs(raw string) ([]int64, error) {
	parts := splitList(raw)
	if len(parts) == 0 {
		return nil, errors.New("no table ids")
	}

	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.New("invalid table id: " + p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
