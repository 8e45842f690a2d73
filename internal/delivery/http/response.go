package httpdelivery

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"pratica/internal/domain"
	"pratica/internal/requestid"
)

// ErrorBody is the JSON envelope for every non-2xx response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// publicMessages is what clients see per code. The full error, with
// upstream URLs and bodies, only goes to the log.
var publicMessages = map[string]string{
	domain.ErrCodeUpstreamUnavailable: "service-b is unavailable",
	domain.ErrCodeUpstreamBadStatus:   "service-b returned an unexpected status",
	domain.ErrCodeUpstreamBadPayload:  "service-b returned an invalid payload",
	domain.ErrCodeInternal:            "internal error",
}

func publicMessage(code string) string {
	if msg, ok := publicMessages[code]; ok {
		return msg
	}
	return publicMessages[domain.ErrCodeInternal]
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorContext(r.Context(), "failed to encode response", "error", err, "path", r.URL.Path)
	}
}

func writeError(log *slog.Logger, w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(log, w, r, status, ErrorBody{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: requestid.FromContext(r.Context()),
	}})
}

// statusFor maps a domain error to the HTTP status returned to the client.
func statusFor(err error) int {
	if domain.IsUpstreamError(err) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeDomainError(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	code := domain.CodeOf(err)
	writeError(log, w, r, statusFor(err), code, publicMessage(code))
}

func notFoundHandler(log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(log, w, r, http.StatusNotFound, "NOT_FOUND", "route not found")
	})
}

func methodNotAllowedHandler(log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(log, w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed")
	})
}
