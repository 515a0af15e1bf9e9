package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type GalleryStatus string

const (
	GalleryStatusDraft     GalleryStatus = "draft"
	GalleryStatusPublished GalleryStatus = "published"
	GalleryStatusArchived  GalleryStatus = "archived"
)

// PricingTier is one band of a gallery's volume discount schedule.
// MaxQty == nil means the band is unbounded.
type PricingTier struct {
	MinQty         int   `json:"min_qty"`
	MaxQty         *int  `json:"max_qty,omitempty"`
	UnitPriceCents int64 `json:"unit_price_cents"`
}

// TierSchedule is stored as a single JSONB column and replaced as a batch.
type TierSchedule []PricingTier

// Gallery is a sellable photo collection. All money fields are integer cents.
type Gallery struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	EventID           *uuid.UUID    `json:"event_id,omitempty" db:"event_id"`
	Title             string        `json:"title" db:"title"`
	Slug              string        `json:"slug" db:"slug"`
	Description       string        `json:"description" db:"description"`
	Status            GalleryStatus `json:"status" db:"status"`
	PriceCents        int64         `json:"price_cents" db:"price_cents"`
	PackagePriceCents *int64        `json:"package_price_cents,omitempty" db:"package_price_cents"`
	PackageEnabled    bool          `json:"package_enabled" db:"package_enabled"`
	Tiers             TierSchedule  `json:"tiers,omitempty" db:"tiers"`
	TiersEnabled      bool          `json:"tiers_enabled" db:"tiers_enabled"`
	PublishedAt       *time.Time    `json:"published_at,omitempty" db:"published_at"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s string) bool {
	switch GalleryStatus(s) {
	case GalleryStatusDraft, GalleryStatusPublished, GalleryStatusArchived:
		return true
	}
	return false
}

// Validate checks invariants on the gallery itself. It deliberately does NOT
// check that a configured package price undercuts the flat total, nor that
// tiers are contiguous; both are tolerated and resolved at pricing time.
func (g *Gallery) Validate() error {
	var errs []string

	if g.Title == "" {
		errs = append(errs, "title is required")
	}
	if g.Slug == "" {
		errs = append(errs, "slug is required")
	} else if !slugPattern.MatchString(g.Slug) {
		errs = append(errs, fmt.Sprintf("slug %q is not URL-safe", g.Slug))
	}
	if g.PriceCents < 0 {
		errs = append(errs, "price_cents must be non-negative")
	}
	if g.PackagePriceCents != nil && *g.PackagePriceCents < 0 {
		errs = append(errs, "package_price_cents must be non-negative")
	}
	if !ValidStatus(string(g.Status)) {
		errs = append(errs, fmt.Sprintf("invalid status %q", g.Status))
	}
	for i, t := range g.Tiers {
		if t.MinQty < 1 {
			errs = append(errs, fmt.Sprintf("tier %d: min_qty must be >= 1", i))
		}
		if t.MaxQty != nil && *t.MaxQty < t.MinQty {
			errs = append(errs, fmt.Sprintf("tier %d: max_qty below min_qty", i))
		}
		if t.UnitPriceCents < 0 {
			errs = append(errs, fmt.Sprintf("tier %d: unit_price_cents must be non-negative", i))
		}
	}

	if len(errs) > 0 {
		return &GalleryValidationError{Errors: errs}
	}

	return nil
}

// PackageAvailable reports whether the whole-package purchase path is open.
func (g *Gallery) PackageAvailable() bool {
	return g.PackageEnabled && g.PackagePriceCents != nil
}

// EffectiveTiers returns the schedule only when tiered pricing is switched on.
func (g *Gallery) EffectiveTiers() TierSchedule {
	if !g.TiersEnabled {
		return nil
	}
	return g.Tiers
}

// Value implements driver.Valuer so the schedule can live in a JSONB column.
func (t TierSchedule) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB round-trips.
func (t *TierSchedule) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported tier schedule type %T", value)
	}
}

type GalleryValidationError struct {
	Errors []string
}

func (e *GalleryValidationError) Error() string {
	return fmt.Sprintf("gallery validation failed: %s", strings.Join(e.Errors, "; "))
}

func IsGalleryValidationError(err error) bool {
	_, ok := err.(*GalleryValidationError)
	return ok
}
