package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/domain/pricing"
	"photo_commerce/internal/repository"
	"photo_commerce/internal/storage"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

const (
	cartTTL     = 24 * time.Hour
	cartCleanup = time.Hour
)

// CartService keeps per-session photo selections in process memory. A cart
// is a derived convenience; losing one on restart costs the shopper a few
// clicks, so nothing here touches Postgres except photo membership checks.
type CartService struct {
	log    *slog.Logger
	photos repository.PhotoRepository

	mu    sync.Mutex
	carts *gocache.Cache
}

func NewCartService(log *slog.Logger, photos repository.PhotoRepository) *CartService {
	return &CartService{
		log:    log,
		photos: photos,
		carts:  gocache.New(cartTTL, cartCleanup),
	}
}

// Toggle flips one photo in and out of the session's selection. The photo
// must belong to the gallery; toggling twice restores the prior state.
func (s *CartService) Toggle(ctx context.Context, sessionID string, gallery models.Gallery, photoID uuid.UUID) (*models.Selection, bool, error) {
	const op = "service.CartService.Toggle"

	photo, err := s.photos.GetPhotoByID(ctx, photoID)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if photo.GalleryID != gallery.ID {
		return nil, false, fmt.Errorf("%s: %w", op, storage.ErrPhotoNotFound)
	}

	sel := s.selection(sessionID, gallery.ID)
	selected := sel.Toggle(photoID)
	s.store(sessionID, sel)

	s.log.Debug("selection toggled",
		slog.String("op", op),
		slog.String("photo_id", photoID.String()),
		slog.Bool("selected", selected),
	)

	return sel, selected, nil
}

// SelectAll replaces the selection with every photo in the gallery.
func (s *CartService) SelectAll(ctx context.Context, sessionID string, gallery models.Gallery) (*models.Selection, error) {
	const op = "service.CartService.SelectAll"

	photos, err := s.photos.ListGalleryPhotos(ctx, gallery.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]uuid.UUID, 0, len(photos))
	for _, p := range photos {
		ids = append(ids, p.ID)
	}

	sel := s.selection(sessionID, gallery.ID)
	sel.ReplaceAll(ids)
	s.store(sessionID, sel)

	return sel, nil
}

func (s *CartService) Clear(sessionID string, galleryID uuid.UUID) *models.Selection {
	sel := models.NewSelection(galleryID)
	s.store(sessionID, sel)
	return sel
}

// Get returns the session's current selection for the gallery, empty if the
// session has never selected anything there.
func (s *CartService) Get(sessionID string, galleryID uuid.UUID) *models.Selection {
	return s.selection(sessionID, galleryID)
}

// Quote prices the selection against the gallery's tier schedule. The
// result is a display estimate; checkout reprices from scratch.
func (s *CartService) Quote(gallery models.Gallery, sel *models.Selection) pricing.Quote {
	return pricing.Calculate(sel.Count(), gallery.EffectiveTiers(), gallery.PriceCents)
}

// selection returns the session's cart for the gallery, creating and caching
// an empty one on first use. Get-or-create is serialized so concurrent first
// requests of a session share one Selection instead of overwriting each
// other's.
func (s *CartService) selection(sessionID string, galleryID uuid.UUID) *models.Selection {
	key := cartKey(sessionID, galleryID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.carts.Get(key); ok {
		if sel, ok := v.(*models.Selection); ok {
			return sel
		}
	}

	sel := models.NewSelection(galleryID)
	s.carts.Set(key, sel, gocache.DefaultExpiration)
	return sel
}

func (s *CartService) store(sessionID string, sel *models.Selection) {
	s.mu.Lock()
	s.carts.Set(cartKey(sessionID, sel.GalleryID), sel, gocache.DefaultExpiration)
	s.mu.Unlock()
}

func cartKey(sessionID string, galleryID uuid.UUID) string {
	return sessionID + ":" + galleryID.String()
}
