package repository

import (
	"context"
	"errors"
	"fmt"

	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type EventRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewEventRepo(db *pgxpool.Pool) *EventRepo {
	return &EventRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *EventRepo) CreateEvent(ctx context.Context, event models.Event) (uuid.UUID, error) {
	const op = "repository.EventRepo.CreateEvent"

	query, args, err := r.sb.Insert("events").
		Columns("name", "description", "starts_at").
		Values(event.Name, event.Description, event.StartsAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *EventRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const op = "repository.EventRepo.GetEventByID"

	query, args, err := r.sb.Select("id", "name", "description", "starts_at", "created_at").
		From("events").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var event models.Event
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.StartsAt,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &event, nil
}

func (r *EventRepo) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "repository.EventRepo.ListEvents"

	query, args, err := r.sb.Select("id", "name", "description", "starts_at", "created_at").
		From("events").
		OrderBy("starts_at DESC NULLS LAST", "created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.StartsAt,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, event)
	}

	return events, nil
}
