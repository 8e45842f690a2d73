package service

import (
	"context"

	"pratica/internal/domain"
)

type responderService struct{}

func NewResponderService() domain.ResponderService {
	return &responderService{}
}

// Acknowledge builds a fresh acknowledgment on every call.
func (s *responderService) Acknowledge(ctx context.Context) (*domain.ResponderResponse, error) {
	return &domain.ResponderResponse{
		Message: domain.ResponderMessage,
	}, nil
}
