package app

import (
	"context"

	"tasktrack/internal/model"
	"tasktrack/internal/repository"
)

// AuditService reads a user's auth events. It also satisfies
// AuthEventPublisher by writing straight to the table, which is how events
// are recorded when no broker is configured.
type AuditService struct {
	eventRepo *repository.AuthEventRepository
}

func NewAuditService(eventRepo *repository.AuthEventRepository) *AuditService {
	return &AuditService{eventRepo: eventRepo}
}

func (s *AuditService) Publish(ctx context.Context, event model.AuthEvent) error {
	event.ID = 0
	return s.eventRepo.Create(ctx, &event)
}

// ListEvents returns the newest events of userID first. limit is clamped by
// the repository.
func (s *AuditService) ListEvents(ctx context.Context, userID uint, limit int) ([]model.AuthEvent, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.eventRepo.ListByUserID(ctx, userID, limit)
}
