package httpdelivery

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"pratica/internal/domain"
)

// CallerHandler serves service-a.
type CallerHandler struct {
	service domain.CallerService
	version string
	log     *slog.Logger
}

func NewCallerHandler(service domain.CallerService, version string, log *slog.Logger) *CallerHandler {
	return &CallerHandler{
		service: service,
		version: version,
		log:     log,
	}
}

// Router returns the routes of service-a.
func (h *CallerHandler) Router() *mux.Router {
	router := newRouter(h.log)
	router.HandleFunc(domain.CallerPath, h.call).Methods(http.MethodGet)
	router.HandleFunc(domain.HealthPath, h.health).Methods(http.MethodGet)
	return router
}

// call forwards to service-b. Any upstream failure becomes a 502 with the
// error envelope; the process keeps serving.
func (h *CallerHandler) call(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Call(r.Context())
	if err != nil {
		h.log.WarnContext(r.Context(), "call to service-b failed",
			"code", domain.CodeOf(err), "error", err)
		writeDomainError(h.log, w, r, err)
		return
	}
	writeJSON(h.log, w, r, http.StatusOK, resp)
}

// health reports degraded when service-b does not answer its own /health.
// Only the error code is exposed; the service logs the details.
func (h *CallerHandler) health(w http.ResponseWriter, r *http.Request) {
	resp := domain.HealthResponse{
		Status:   domain.HealthStatusOK,
		Service:  domain.CallerLabel,
		Version:  h.version,
		Upstream: domain.HealthStatusOK,
	}
	if err := h.service.CheckUpstream(r.Context()); err != nil {
		resp.Status = domain.HealthStatusDegraded
		resp.Upstream = domain.CodeOf(err)
		writeJSON(h.log, w, r, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(h.log, w, r, http.StatusOK, resp)
}
