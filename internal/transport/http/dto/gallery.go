package dto

import (
	"time"

	"photo_commerce/internal/domain/models"

	"github.com/google/uuid"
)

type TierInput struct {
	MinQty         int   `json:"min_qty" validate:"required,min=1"`
	MaxQty         *int  `json:"max_qty,omitempty" validate:"omitempty,min=1"`
	UnitPriceCents int64 `json:"unit_price_cents" validate:"min=0"`
}

type CreateGalleryRequest struct {
	Title             string      `json:"title" validate:"required"`
	Slug              string      `json:"slug,omitempty"`
	Description       string      `json:"description,omitempty"`
	EventID           *uuid.UUID  `json:"event_id,omitempty"`
	PriceCents        int64       `json:"price_cents" validate:"min=0"`
	PackagePriceCents *int64      `json:"package_price_cents,omitempty" validate:"omitempty,min=0"`
	PackageEnabled    bool        `json:"package_enabled"`
	Tiers             []TierInput `json:"tiers,omitempty" validate:"omitempty,dive"`
	TiersEnabled      bool        `json:"tiers_enabled"`
}

type UpdateGalleryRequest struct {
	ID                uuid.UUID  `json:"id" validate:"required"`
	Title             string     `json:"title" validate:"required"`
	Slug              string     `json:"slug,omitempty"`
	Description       string     `json:"description,omitempty"`
	EventID           *uuid.UUID `json:"event_id,omitempty"`
	PriceCents        int64      `json:"price_cents" validate:"min=0"`
	PackagePriceCents *int64     `json:"package_price_cents,omitempty" validate:"omitempty,min=0"`
	PackageEnabled    bool       `json:"package_enabled"`
}

type UpdateGalleryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft published archived"`
}

// ReplaceTiersRequest swaps the entire discount schedule; tiers are never
// edited one row at a time.
type ReplaceTiersRequest struct {
	Tiers   []TierInput `json:"tiers" validate:"dive"`
	Enabled bool        `json:"enabled"`
}

type GalleryResponse struct {
	ID                uuid.UUID            `json:"id"`
	EventID           *uuid.UUID           `json:"event_id,omitempty"`
	Title             string               `json:"title"`
	Slug              string               `json:"slug"`
	Description       string               `json:"description,omitempty"`
	Status            string               `json:"status"`
	PriceCents        int64                `json:"price_cents"`
	PackagePriceCents *int64               `json:"package_price_cents,omitempty"`
	PackageEnabled    bool                 `json:"package_enabled"`
	Tiers             []models.PricingTier `json:"tiers,omitempty"`
	TiersEnabled      bool                 `json:"tiers_enabled"`
	PublishedAt       *time.Time           `json:"published_at,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
	Photos            []PhotoResponse      `json:"photos,omitempty"`
}

type GalleryListResponse struct {
	Galleries []GalleryResponse `json:"galleries"`
	Total     int               `json:"total"`
	Page      int               `json:"page"`
	PerPage   int               `json:"per_page"`
}

// TiersToDomain converts the request rows into the stored schedule.
func TiersToDomain(tiers []TierInput) models.TierSchedule {
	if len(tiers) == 0 {
		return nil
	}
	out := make(models.TierSchedule, len(tiers))
	for i, t := range tiers {
		out[i] = models.PricingTier{
			MinQty:         t.MinQty,
			MaxQty:         t.MaxQty,
			UnitPriceCents: t.UnitPriceCents,
		}
	}
	return out
}

// GalleryToResponse maps the domain model; photos are attached separately
// by the handler when the view needs them.
func GalleryToResponse(g *models.Gallery) GalleryResponse {
	return GalleryResponse{
		ID:                g.ID,
		EventID:           g.EventID,
		Title:             g.Title,
		Slug:              g.Slug,
		Description:       g.Description,
		Status:            string(g.Status),
		PriceCents:        g.PriceCents,
		PackagePriceCents: g.PackagePriceCents,
		PackageEnabled:    g.PackageEnabled,
		Tiers:             g.Tiers,
		TiersEnabled:      g.TiersEnabled,
		PublishedAt:       g.PublishedAt,
		CreatedAt:         g.CreatedAt,
		UpdatedAt:         g.UpdatedAt,
	}
}
