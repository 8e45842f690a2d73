package domain

import (
	"context"
	"encoding/json"
)

const (
	// ResponderMessage is the acknowledgment returned by service-b.
	ResponderMessage = "Acesso autorizado ao service-b"

	CallerLabel    = "service-a"
	ResponderLabel = "service-b"

	// ResponderPath is the route served by service-b and called by service-a.
	ResponderPath = "/minha-rota"
	CallerPath    = "/call"
	HealthPath    = "/health"
)

// ResponderResponse is the payload of GET /minha-rota.
type ResponderResponse struct {
	Message string `json:"message"`
}

// CallerResponse is the payload of GET /call. ServiceB holds the bytes
// service-b answered with, so fields unknown to service-a survive.
type CallerResponse struct {
	From     string          `json:"from"`
	ServiceB json.RawMessage `json:"serviceB"`
}

// HealthResponse is the payload of GET /health on both services.
type HealthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version,omitempty"`
	Upstream string `json:"upstream,omitempty"`
}

const (
	HealthStatusOK       = "ok"
	HealthStatusDegraded = "degraded"
)

// ResponderService builds the acknowledgment served by service-b.
type ResponderService interface {
	Acknowledge(ctx context.Context) (*ResponderResponse, error)
}

// CallerService forwards a call to service-b and composes the result.
type CallerService interface {
	Call(ctx context.Context) (*CallerResponse, error)
	CheckUpstream(ctx context.Context) error
}

// ResponderClient performs the outbound call from service-a to service-b.
// Fetch returns the validated response body untouched.
type ResponderClient interface {
	Fetch(ctx context.Context) (json.RawMessage, error)
	Ping(ctx context.Context) error
}
