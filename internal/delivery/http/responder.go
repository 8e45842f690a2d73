package httpdelivery

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"pratica/internal/domain"
)

// ResponderHandler serves service-b.
type ResponderHandler struct {
	service domain.ResponderService
	version string
	log     *slog.Logger
}

func NewResponderHandler(service domain.ResponderService, version string, log *slog.Logger) *ResponderHandler {
	return &ResponderHandler{
		service: service,
		version: version,
		log:     log,
	}
}

// Router returns the routes of service-b.
func (h *ResponderHandler) Router() *mux.Router {
	router := newRouter(h.log)
	router.HandleFunc(domain.ResponderPath, h.acknowledge).Methods(http.MethodGet)
	router.HandleFunc(domain.HealthPath, h.health).Methods(http.MethodGet)
	return router
}

// acknowledge ignores the request body and query string.
func (h *ResponderHandler) acknowledge(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Acknowledge(r.Context())
	if err != nil {
		writeDomainError(h.log, w, r, err)
		return
	}
	writeJSON(h.log, w, r, http.StatusOK, resp)
}

func (h *ResponderHandler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.log, w, r, http.StatusOK, domain.HealthResponse{
		Status:  domain.HealthStatusOK,
		Service: domain.ResponderLabel,
		Version: h.version,
	})
}
