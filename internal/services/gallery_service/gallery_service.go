package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/lib/logger/sl"
	"photo_commerce/internal/lib/slug"
	"photo_commerce/internal/repository"
	"photo_commerce/internal/storage"
	"photo_commerce/internal/transport/http/dto"

	"github.com/google/uuid"
)

var ErrCannotPublishEmpty = errors.New("gallery cannot be published without photos")

type GalleryService struct {
	log   *slog.Logger
	repo  repository.GalleryRepository
	photo repository.PhotoRepository
	cache repository.GalleryCache
}

func NewGalleryService(log *slog.Logger, repo repository.GalleryRepository, photo repository.PhotoRepository, cache repository.GalleryCache) *GalleryService {
	return &GalleryService{
		log:   log,
		repo:  repo,
		photo: photo,
		cache: cache,
	}
}

// CreateGallery creates a new gallery in draft state.
func (s *GalleryService) CreateGallery(ctx context.Context, req dto.CreateGalleryRequest) (uuid.UUID, error) {
	const op = "service.GalleryService.CreateGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.String("title", req.Title),
	)

	log.Info("creating gallery")

	gallerySlug := req.Slug
	if gallerySlug == "" {
		gallerySlug = slug.Make(req.Title)
	}

	gallery := models.Gallery{
		EventID:           req.EventID,
		Title:             req.Title,
		Slug:              gallerySlug,
		Description:       req.Description,
		Status:            models.GalleryStatusDraft,
		PriceCents:        req.PriceCents,
		PackagePriceCents: req.PackagePriceCents,
		PackageEnabled:    req.PackageEnabled,
		Tiers:             dto.TiersToDomain(req.Tiers),
		TiersEnabled:      req.TiersEnabled,
	}

	if err := gallery.Validate(); err != nil {
		log.Error("gallery validation failed", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateGallery(ctx, gallery)
	if err != nil {
		log.Error("failed to create gallery", sl.Err(err))
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("gallery created", slog.String("id", id.String()))
	return id, nil
}

// UpdateGallery overwrites the operator-editable fields and drops the
// public cache entry for the slug.
func (s *GalleryService) UpdateGallery(ctx context.Context, req dto.UpdateGalleryRequest) error {
	const op = "service.GalleryService.UpdateGallery"
	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", req.ID.String()),
	)

	log.Info("updating gallery")

	current, err := s.repo.GetGalleryByID(ctx, req.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	gallery := current
	gallery.EventID = req.EventID
	gallery.Title = req.Title
	gallery.Description = req.Description
	gallery.PriceCents = req.PriceCents
	gallery.PackagePriceCents = req.PackagePriceCents
	gallery.PackageEnabled = req.PackageEnabled
	if req.Slug != "" {
		gallery.Slug = req.Slug
	}

	if err := gallery.Validate(); err != nil {
		log.Error("gallery validation failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateGallery(ctx, gallery); err != nil {
		log.Error("failed to update gallery", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, current.Slug, gallery.Slug)

	log.Info("gallery updated")
	return nil
}

// UpdateGalleryStatus moves a gallery through its lifecycle. Publishing is
// refused while the gallery has no photos.
func (s *GalleryService) UpdateGalleryStatus(ctx context.Context, id uuid.UUID, status string) error {
	const op = "service.GalleryService.UpdateGalleryStatus"
	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
		slog.String("status", status),
	)

	log.Info("updating gallery status")

	if !models.ValidStatus(status) {
		log.Error("invalid status")
		return fmt.Errorf("%s: invalid status: %s", op, status)
	}

	gallery, err := s.repo.GetGalleryByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if models.GalleryStatus(status) == models.GalleryStatusPublished {
		count, err := s.photo.CountGalleryPhotos(ctx, id)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if count == 0 {
			log.Warn("refusing to publish empty gallery")
			return fmt.Errorf("%s: %w", op, ErrCannotPublishEmpty)
		}
	}

	if err := s.repo.UpdateGalleryStatus(ctx, id, models.GalleryStatus(status)); err != nil {
		log.Error("failed to update gallery status", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, gallery.Slug)

	log.Info("gallery status updated")
	return nil
}

// ReplaceTierSchedule swaps the whole volume discount schedule in one save.
func (s *GalleryService) ReplaceTierSchedule(ctx context.Context, id uuid.UUID, req dto.ReplaceTiersRequest) error {
	const op = "service.GalleryService.ReplaceTierSchedule"
	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_id", id.String()),
	)

	log.Info("replacing tier schedule", slog.Int("tiers", len(req.Tiers)))

	gallery, err := s.repo.GetGalleryByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	gallery.Tiers = dto.TiersToDomain(req.Tiers)
	gallery.TiersEnabled = req.Enabled
	if err := gallery.Validate(); err != nil {
		log.Error("tier schedule validation failed", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.ReplaceTierSchedule(ctx, id, gallery.Tiers, req.Enabled); err != nil {
		log.Error("failed to replace tier schedule", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, gallery.Slug)

	log.Info("tier schedule replaced")
	return nil
}

// GetGalleryByID returns a gallery for the operator console, any status.
func (s *GalleryService) GetGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error) {
	const op = "service.GalleryService.GetGalleryByID"

	gallery, err := s.repo.GetGalleryByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &gallery, nil
}

// GetPublishedGalleryBySlug is the public read path, cached behind the slug.
func (s *GalleryService) GetPublishedGalleryBySlug(ctx context.Context, gallerySlug string) (*models.Gallery, error) {
	const op = "service.GalleryService.GetPublishedGalleryBySlug"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", gallerySlug),
	)

	if s.cache != nil {
		cached, err := s.cache.GetBySlug(ctx, gallerySlug)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, storage.ErrCacheMiss) {
			// Cache trouble is never fatal for reads.
			log.Warn("gallery cache read failed", sl.Err(err))
		}
	}

	gallery, err := s.repo.GetGalleryBySlug(ctx, gallerySlug, true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.SetBySlug(ctx, &gallery); err != nil {
			log.Warn("gallery cache write failed", sl.Err(err))
		}
	}

	return &gallery, nil
}

// ListGalleries returns a paginated operator listing.
func (s *GalleryService) ListGalleries(ctx context.Context, statusFilter string, page, perPage int) ([]models.Gallery, int, error) {
	const op = "service.GalleryService.ListGalleries"

	galleries, total, err := s.repo.GetGalleries(ctx, statusFilter, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return galleries, total, nil
}

func (s *GalleryService) invalidate(ctx context.Context, slugs ...string) {
	if s.cache == nil {
		return
	}
	seen := make(map[string]bool, len(slugs))
	for _, g := range slugs {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		if err := s.cache.Invalidate(ctx, g); err != nil {
			s.log.Warn("gallery cache invalidation failed", sl.Err(err))
		}
	}
}
