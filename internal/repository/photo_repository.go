package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

type PhotoRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewPhotoRepo(db *pgxpool.Pool) *PhotoRepo {
	return &PhotoRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var photoColumns = []string{
	"id",
	"gallery_id",
	"original_path",
	"watermarked_path",
	"thumbnail_path",
	"filename",
	"width",
	"height",
	"file_size",
	"sort_order",
	"price_override_cents",
	"created_at",
}

// CreatePhoto inserts the catalog record for a photo whose three variants
// already landed in storage. The pipeline never calls this earlier.
func (r *PhotoRepo) CreatePhoto(ctx context.Context, photo *models.Photo) (*models.Photo, error) {
	const op = "repository.PhotoRepo.CreatePhoto"

	query, args, err := r.sb.Insert("photos").
		Columns(
			"id",
			"gallery_id",
			"original_path",
			"watermarked_path",
			"thumbnail_path",
			"filename",
			"width",
			"height",
			"file_size",
			"sort_order",
			"price_override_cents",
			"created_at",
		).
		Values(
			photo.ID,
			photo.GalleryID,
			photo.OriginalPath,
			photo.WatermarkedPath,
			photo.ThumbnailPath,
			photo.Filename,
			photo.Width,
			photo.Height,
			photo.FileSize,
			photo.SortOrder,
			photo.PriceOverrideCents,
			photo.CreatedAt,
		).
		Suffix("RETURNING " + columnsList(photoColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := r.scanPhoto(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (r *PhotoRepo) GetPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error) {
	const op = "repository.PhotoRepo.GetPhotoByID"

	query, args, err := r.sb.Select(photoColumns...).
		From("photos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	photo, err := r.scanPhoto(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return photo, nil
}

// ListGalleryPhotos returns all photos of a gallery in display order.
func (r *PhotoRepo) ListGalleryPhotos(ctx context.Context, galleryID uuid.UUID) ([]models.Photo, error) {
	const op = "repository.PhotoRepo.ListGalleryPhotos"

	query, args, err := r.sb.Select(photoColumns...).
		From("photos").
		Where(squirrel.Eq{"gallery_id": galleryID}).
		OrderBy("sort_order ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		photo, err := r.scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		photos = append(photos, *photo)
	}

	return photos, nil
}

// ListPhotosByIDs returns the subset of ids that actually belong to the
// gallery; callers compare lengths to catch foreign ids.
func (r *PhotoRepo) ListPhotosByIDs(ctx context.Context, galleryID uuid.UUID, ids []uuid.UUID) ([]models.Photo, error) {
	const op = "repository.PhotoRepo.ListPhotosByIDs"

	if len(ids) == 0 {
		return nil, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query, args, err := r.sb.Select(photoColumns...).
		From("photos").
		Where("gallery_id = ? AND id = ANY(?::uuid[])", galleryID, pq.Array(idStrings)).
		OrderBy("sort_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		photo, err := r.scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		photos = append(photos, *photo)
	}

	return photos, nil
}

func (r *PhotoRepo) CountGalleryPhotos(ctx context.Context, galleryID uuid.UUID) (int, error) {
	const op = "repository.PhotoRepo.CountGalleryPhotos"

	query, args, err := r.sb.Select("COUNT(*)").
		From("photos").
		Where(squirrel.Eq{"gallery_id": galleryID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (r *PhotoRepo) UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) error {
	const op = "repository.PhotoRepo.UpdateSortOrder"

	query, args, err := r.sb.Update("photos").
		Set("sort_order", sortOrder).
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
		return fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
	}

	return nil
}

func (r *PhotoRepo) UpdatePriceOverride(ctx context.Context, id uuid.UUID, priceCents *int64) error {
	const op = "repository.PhotoRepo.UpdatePriceOverride"

	query, args, err := r.sb.Update("photos").
		Set("price_override_cents", priceCents).
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
		return fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
	}

	return nil
}

// DeletePhoto removes only the catalog record; the caller deletes the
// storage objects first.
func (r *PhotoRepo) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	const op = "repository.PhotoRepo.DeletePhoto"

	query, args, err := r.sb.Delete("photos").
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
		return fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
	}

	return nil
}

func (r *PhotoRepo) scanPhoto(row pgx.Row) (*models.Photo, error) {
	var photo models.Photo
	err := row.Scan(
		&photo.ID,
		&photo.GalleryID,
		&photo.OriginalPath,
		&photo.WatermarkedPath,
		&photo.ThumbnailPath,
		&photo.Filename,
		&photo.Width,
		&photo.Height,
		&photo.FileSize,
		&photo.SortOrder,
		&photo.PriceOverrideCents,
		&photo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

func columnsList(cols []string) string {
	return strings.Join(cols, ", ")
}
