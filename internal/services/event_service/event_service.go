package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/repository"

	"github.com/google/uuid"
)

// EventService manages the shoots that galleries hang off.
type EventService struct {
	log  *slog.Logger
	repo repository.EventRepository
}

func NewEventService(log *slog.Logger, repo repository.EventRepository) *EventService {
	return &EventService{log: log, repo: repo}
}

func (s *EventService) CreateEvent(ctx context.Context, name, description string, startsAt *time.Time) (uuid.UUID, error) {
	const op = "service.EventService.CreateEvent"

	event := models.Event{
		Name:        name,
		Description: description,
		StartsAt:    startsAt,
	}

	id, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("event created",
		slog.String("op", op),
		slog.String("event_id", id.String()),
	)

	return id, nil
}

func (s *EventService) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const op = "service.EventService.GetEventByID"

	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "service.EventService.ListEvents"

	events, err := s.repo.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}
