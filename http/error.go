package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fwojciec/cookbook"
)

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	cookbook.ECONFLICT:     http.StatusConflict,
	cookbook.EINVALID:      http.StatusBadRequest,
	cookbook.ENOTFOUND:     http.StatusNotFound,
	cookbook.EUNAUTHORIZED: http.StatusUnauthorized,
	cookbook.EUPSTREAM:     http.StatusBadGateway,
	cookbook.EINTERNAL:     http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error          string            `json:"error"`
	Code           string            `json:"code"`
	Details        string            `json:"details,omitempty"`
	Fields         map[string]string `json:"fields,omitempty"`
	Suggestions    []string          `json:"suggestions,omitempty"`
	Retryable      bool              `json:"retryable"`
	FallbackAction string            `json:"fallbackAction,omitempty"`
}

// Error writes err as a JSON error response. Internal errors are logged.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	s.writeError(w, r, err, s.errorResponse(err))
}

// categoryError writes an error from a category operation. Missing
// categories point clients at Uncategorized and internal failures are
// marked retryable.
func (s *Server) categoryError(w http.ResponseWriter, r *http.Request, err error) {
	resp := s.errorResponse(err)
	switch resp.Code {
	case cookbook.ENOTFOUND:
		resp.FallbackAction = cookbook.Uncategorized
	case cookbook.EINTERNAL:
		resp.Retryable = true
	}
	s.writeError(w, r, err, resp)
}

func (s *Server) errorResponse(err error) ErrorResponse {
	code := cookbook.ErrorCode(err)
	resp := ErrorResponse{
		Error:       cookbook.ErrorMessage(err),
		Code:        code,
		Suggestions: cookbook.ErrorSuggestions(err),
	}

	var xe *cookbook.ExtractionError
	if errors.As(err, &xe) {
		switch xe.Reason {
		case cookbook.FailureTimeout, cookbook.FailureQuota, cookbook.FailureNetwork:
			resp.Retryable = true
		}
	}

	if !s.Production && (code == cookbook.EINTERNAL || code == cookbook.EUPSTREAM) {
		resp.Details = err.Error()
	}
	return resp
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, resp ErrorResponse) {
	status := ErrorStatusCode(resp.Code)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("http error",
			"method", r.Method,
			"path", r.URL.Path,
			"user", requestUser(r),
			"code", resp.Code,
			"err", err,
		)
	}
	writeJSON(w, status, resp)
}

// writeJSON writes v as a JSON response with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}
