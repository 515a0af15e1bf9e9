package models

import "github.com/google/uuid"

// OrderIntent is the payload handed to the external payment processor.
// Either PhotoIDs or IsPackage is set, never both. Persistence of the
// resulting order lives behind the processor's webhook pipeline.
type OrderIntent struct {
	GallerySlug  string      `json:"gallery_slug"`
	Email        string      `json:"email"`
	CustomerName string      `json:"customer_name,omitempty"`
	PhotoIDs     []uuid.UUID `json:"photo_ids,omitempty"`
	IsPackage    bool        `json:"is_package"`
	TotalCents   int64       `json:"total_cents"`
}
