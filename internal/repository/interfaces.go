package repository

import (
	"context"

	"photo_commerce/internal/domain/models"

	"github.com/google/uuid"
)

type GalleryRepository interface {
	CreateGallery(ctx context.Context, gallery models.Gallery) (uuid.UUID, error)
	UpdateGallery(ctx context.Context, gallery models.Gallery) error
	UpdateGalleryStatus(ctx context.Context, id uuid.UUID, status models.GalleryStatus) error
	ReplaceTierSchedule(ctx context.Context, id uuid.UUID, tiers models.TierSchedule, enabled bool) error
	GetGalleryByID(ctx context.Context, id uuid.UUID) (models.Gallery, error)
	GetGalleryBySlug(ctx context.Context, slug string, publishedOnly bool) (models.Gallery, error)
	GetGalleries(ctx context.Context, statusFilter string, page, perPage int) ([]models.Gallery, int, error)
}

type PhotoRepository interface {
	CreatePhoto(ctx context.Context, photo *models.Photo) (*models.Photo, error)
	GetPhotoByID(ctx context.Context, id uuid.UUID) (*models.Photo, error)
	ListGalleryPhotos(ctx context.Context, galleryID uuid.UUID) ([]models.Photo, error)
	ListPhotosByIDs(ctx context.Context, galleryID uuid.UUID, ids []uuid.UUID) ([]models.Photo, error)
	CountGalleryPhotos(ctx context.Context, galleryID uuid.UUID) (int, error)
	UpdateSortOrder(ctx context.Context, id uuid.UUID, sortOrder int) error
	UpdatePriceOverride(ctx context.Context, id uuid.UUID, priceCents *int64) error
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

type EventRepository interface {
	CreateEvent(ctx context.Context, event models.Event) (uuid.UUID, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
}

type UserRepository interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
}

// GalleryCache holds serialized published galleries behind their slug so
// public traffic does not hit Postgres on every page view.
type GalleryCache interface {
	GetBySlug(ctx context.Context, slug string) (*models.Gallery, error)
	SetBySlug(ctx context.Context, gallery *models.Gallery) error
	Invalidate(ctx context.Context, slug string) error
}
