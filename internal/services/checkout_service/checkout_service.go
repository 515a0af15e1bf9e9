package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"photo_commerce/internal/clients/checkout"
	"photo_commerce/internal/domain/models"
	"photo_commerce/internal/domain/pricing"
	"photo_commerce/internal/lib/logger/sl"
	"photo_commerce/internal/metrics"
	"photo_commerce/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrEmailRequired       = errors.New("email is required")
	ErrEmptySelection      = errors.New("selection is empty")
	ErrPackageNotAvailable = errors.New("package purchase is not available for this gallery")
	ErrUnknownPhotos       = errors.New("selection contains photos not in this gallery")
)

// CheckoutService turns a shopper's selection into a hosted checkout URL.
// Totals are recomputed here from the catalog; whatever the cart displayed
// is treated as an estimate only.
type CheckoutService struct {
	log           *slog.Logger
	photos        repository.PhotoRepository
	client        checkout.Client
	publicBaseURL string
}

func NewCheckoutService(log *slog.Logger, photos repository.PhotoRepository, client checkout.Client, publicBaseURL string) *CheckoutService {
	return &CheckoutService{
		log:           log,
		photos:        photos,
		client:        client,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Submit validates the order, reprices it server-side and asks the payment
// provider for a checkout URL. On error the caller keeps the cart as-is so
// the shopper can retry.
func (s *CheckoutService) Submit(
	ctx context.Context,
	gallery models.Gallery,
	email, customerName string,
	photoIDs []uuid.UUID,
	isPackage bool,
) (string, int64, error) {
	const op = "service.CheckoutService.Submit"

	log := s.log.With(
		slog.String("op", op),
		slog.String("gallery_slug", gallery.Slug),
	)

	if err := validateEmail(email); err != nil {
		metrics.CheckoutAttemptsTotal.WithLabelValues("rejected").Inc()
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	var (
		total int64
		err   error
	)
	if isPackage {
		total, err = s.packageTotal(gallery)
	} else {
		total, err = s.selectionTotal(ctx, gallery, photoIDs)
	}
	if err != nil {
		metrics.CheckoutAttemptsTotal.WithLabelValues("rejected").Inc()
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	intent := models.OrderIntent{
		GallerySlug:  gallery.Slug,
		Email:        email,
		CustomerName: customerName,
		IsPackage:    isPackage,
		TotalCents:   total,
	}
	if !isPackage {
		intent.PhotoIDs = photoIDs
	}

	galleryURL := s.publicBaseURL + "/galleries/" + gallery.Slug
	cancelURL := galleryURL + "?checkout=cancelled"

	checkoutURL, err := s.client.CreateCheckout(ctx, intent, galleryURL, cancelURL)
	if err != nil {
		metrics.CheckoutAttemptsTotal.WithLabelValues("provider_error").Inc()
		log.Error("checkout provider call failed", sl.Err(err))
		return "", 0, fmt.Errorf("%s: %w", op, err)
	}

	metrics.CheckoutAttemptsTotal.WithLabelValues("created").Inc()
	log.Info("checkout created",
		slog.Int64("total_cents", total),
		slog.Bool("is_package", isPackage),
		slog.Int("photos", len(photoIDs)),
	)

	return checkoutURL, total, nil
}

func (s *CheckoutService) packageTotal(gallery models.Gallery) (int64, error) {
	if !gallery.PackageAvailable() {
		return 0, ErrPackageNotAvailable
	}
	return *gallery.PackagePriceCents, nil
}

// selectionTotal reprices the selected ids from the catalog. Photos with an
// operator price override are summed at the override; the rest go through
// the tier calculator as one quantity.
func (s *CheckoutService) selectionTotal(ctx context.Context, gallery models.Gallery, photoIDs []uuid.UUID) (int64, error) {
	if len(photoIDs) == 0 {
		return 0, ErrEmptySelection
	}

	photos, err := s.photos.ListPhotosByIDs(ctx, gallery.ID, photoIDs)
	if err != nil {
		return 0, err
	}
	if len(photos) != len(dedupe(photoIDs)) {
		return 0, ErrUnknownPhotos
	}

	var overridden int64
	tiered := 0
	for _, p := range photos {
		if p.PriceOverrideCents != nil {
			overridden += *p.PriceOverrideCents
			continue
		}
		tiered++
	}

	quote := pricing.Calculate(tiered, gallery.EffectiveTiers(), gallery.PriceCents)

	return quote.TotalCents + overridden, nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	return nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
