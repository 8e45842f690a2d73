package service

import (
	"context"
	"log/slog"

	"pratica/internal/domain"
)

type callerService struct {
	client domain.ResponderClient
	log    *slog.Logger
}

func NewCallerService(client domain.ResponderClient, log *slog.Logger) domain.CallerService {
	return &callerService{
		client: client,
		log:    log,
	}
}

// Call makes exactly one outbound request and wraps its payload. Errors
// from the client are returned untouched so the HTTP layer can map codes.
func (s *callerService) Call(ctx context.Context) (*domain.CallerResponse, error) {
	payload, err := s.client.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.CallerResponse{
		From:     domain.CallerLabel,
		ServiceB: payload,
	}, nil
}

func (s *callerService) CheckUpstream(ctx context.Context) error {
	if err := s.client.Ping(ctx); err != nil {
		s.log.WarnContext(ctx, "service-b health check failed", "error", err)
		return err
	}
	return nil
}
