package repository

import (
	"context"
	"errors"
	"fmt"

	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type GalleryRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewGalleryRepo(db *pgxpool.Pool) *GalleryRepo {
	return &GalleryRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var galleryColumns = []string{
	"id",
	"event_id",
	"title",
	"slug",
	"description",
	"status",
	"price_cents",
	"package_price_cents",
	"package_enabled",
	"tiers",
	"tiers_enabled",
	"published_at",
	"created_at",
	"updated_at",
}

// CreateGallery inserts a new gallery in draft state and returns its ID.
func (r *GalleryRepo) CreateGallery(ctx context.Context, gallery models.Gallery) (uuid.UUID, error) {
	const op = "repository.GalleryRepo.CreateGallery"

	query, args, err := r.sb.Insert("galleries").
		Columns(
			"event_id",
			"title",
			"slug",
			"description",
			"status",
			"price_cents",
			"package_price_cents",
			"package_enabled",
			"tiers",
			"tiers_enabled",
		).
		Values(
			gallery.EventID,
			gallery.Title,
			gallery.Slug,
			gallery.Description,
			gallery.Status,
			gallery.PriceCents,
			gallery.PackagePriceCents,
			gallery.PackageEnabled,
			gallery.Tiers,
			gallery.TiersEnabled,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrSlugTaken)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// UpdateGallery overwrites the operator-editable fields.
func (r *GalleryRepo) UpdateGallery(ctx context.Context, gallery models.Gallery) error {
	const op = "repository.GalleryRepo.UpdateGallery"

	query, args, err := r.sb.Update("galleries").
		Set("event_id", gallery.EventID).
		Set("title", gallery.Title).
		Set("slug", gallery.Slug).
		Set("description", gallery.Description).
		Set("price_cents", gallery.PriceCents).
		Set("package_price_cents", gallery.PackagePriceCents).
		Set("package_enabled", gallery.PackageEnabled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": gallery.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrSlugTaken)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

// UpdateGalleryStatus moves the gallery through its lifecycle. Publishing
// stamps published_at on the first transition.
func (r *GalleryRepo) UpdateGalleryStatus(ctx context.Context, id uuid.UUID, status models.GalleryStatus) error {
	const op = "repository.GalleryRepo.UpdateGalleryStatus"

	builder := r.sb.Update("galleries").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if status == models.GalleryStatusPublished {
		builder = builder.Set("published_at", squirrel.Expr("COALESCE(published_at, NOW())"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

// ReplaceTierSchedule swaps the whole discount schedule in one write; tiers
// are always edited as a batch.
func (r *GalleryRepo) ReplaceTierSchedule(ctx context.Context, id uuid.UUID, tiers models.TierSchedule, enabled bool) error {
	const op = "repository.GalleryRepo.ReplaceTierSchedule"

	query, args, err := r.sb.Update("galleries").
		Set("tiers", tiers).
		Set("tiers_enabled", enabled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
	}

	return nil
}

// GetGalleryByID returns a gallery for the operator console, any status.
func (r *GalleryRepo) GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleryByID"

	query, args, err := r.sb.Select(galleryColumns...).
		From("galleries").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := r.scanGallery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Gallery{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return gallery, nil
}

// GetGalleryBySlug is the public lookup; publishedOnly gates shopper
// visibility to published galleries.
func (r *GalleryRepo) GetGalleryBySlug(ctx context.Context, slug string, publishedOnly bool) (models.Gallery, error) {
	const op = "repository.GalleryRepo.GetGalleryBySlug"

	builder := r.sb.Select(galleryColumns...).
		From("galleries").
		Where(squirrel.Eq{"slug": slug})

	if publishedOnly {
		builder = builder.Where(squirrel.Eq{"status": models.GalleryStatusPublished})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	gallery, err := r.scanGallery(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Gallery{}, fmt.Errorf("%s: %w", op, storage.ErrGalleryNotFound)
		}
		return models.Gallery{}, fmt.Errorf("%s: %w", op, err)
	}

	return gallery, nil
}

func (r *GalleryRepo) GetGalleries(
	ctx context.Context,
	statusFilter string, // "all", "draft", "published", "archived"
	page int,
	perPage int,
) ([]models.Gallery, int, error) {
	const op = "repository.GalleryRepo.GetGalleries"

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	builder := r.sb.Select(galleryColumns...).From("galleries")

	switch statusFilter {
	case "draft", "published", "archived":
		builder = builder.Where(squirrel.Eq{"status": statusFilter})
	case "all":
		// no filter
	default:
		return nil, 0, fmt.Errorf("%s: invalid status filter '%s'", op, statusFilter)
	}

	totalCount, err := r.getTotalCount(ctx, statusFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	builder = builder.
		OrderBy("created_at DESC").
		Limit(uint64(perPage)).
		Offset(uint64((page - 1) * perPage))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var galleries []models.Gallery
	for rows.Next() {
		gallery, err := r.scanGallery(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		galleries = append(galleries, gallery)
	}

	return galleries, totalCount, nil
}

func (r *GalleryRepo) getTotalCount(ctx context.Context, statusFilter string) (int, error) {
	builder := r.sb.Select("COUNT(*)").From("galleries")
	if statusFilter != "all" {
		builder = builder.Where(squirrel.Eq{"status": statusFilter})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error build query: %w", err)
	}

	var count int
	err = r.db.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("error execute query: %w", err)
	}

	return count, nil
}

func (r *GalleryRepo) scanGallery(row pgx.Row) (models.Gallery, error) {
	var gallery models.Gallery
	err := row.Scan(
		&gallery.ID,
		&gallery.EventID,
		&gallery.Title,
		&gallery.Slug,
		&gallery.Description,
		&gallery.Status,
		&gallery.PriceCents,
		&gallery.PackagePriceCents,
		&gallery.PackageEnabled,
		&gallery.Tiers,
		&gallery.TiersEnabled,
		&gallery.PublishedAt,
		&gallery.CreatedAt,
		&gallery.UpdatedAt,
	)
	return gallery, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
