package dto

import (
	"photo_commerce/internal/domain/pricing"

	"github.com/google/uuid"
)

type ToggleSelectionRequest struct {
	PhotoID uuid.UUID `json:"photo_id" validate:"required"`
}

// CartResponse is the priced view of the shopper's current selection.
// Totals are display estimates; the checkout orchestrator reprices
// authoritatively at submit time.
type CartResponse struct {
	GalleryID         uuid.UUID     `json:"gallery_id"`
	PhotoIDs          []uuid.UUID   `json:"photo_ids"`
	Quantity          int           `json:"quantity"`
	Quote             pricing.Quote `json:"quote"`
	PackageAvailable  bool          `json:"package_available"`
	PackagePriceCents *int64        `json:"package_price_cents,omitempty"`
}
