package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Photo is one uploaded image and its three stored variants. The three
// storage paths are populated as a unit: a record only exists once the
// original, watermarked and thumbnail objects are all in place.
type Photo struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	GalleryID          uuid.UUID `json:"gallery_id" db:"gallery_id"`
	OriginalPath       string    `json:"original_path" db:"original_path"`
	WatermarkedPath    string    `json:"watermarked_path" db:"watermarked_path"`
	ThumbnailPath      string    `json:"thumbnail_path" db:"thumbnail_path"`
	Filename           string    `json:"filename" db:"filename"`
	Width              int       `json:"width" db:"width"`
	Height             int       `json:"height" db:"height"`
	FileSize           int64     `json:"file_size" db:"file_size"`
	SortOrder          int       `json:"sort_order" db:"sort_order"`
	PriceOverrideCents *int64    `json:"price_override_cents,omitempty" db:"price_override_cents"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

func (p *Photo) Validate() error {
	var errs []string

	if p.GalleryID == uuid.Nil {
		errs = append(errs, "gallery ID is required")
	}
	if p.OriginalPath == "" || p.WatermarkedPath == "" || p.ThumbnailPath == "" {
		errs = append(errs, "all three storage paths are required")
	}
	if p.Filename == "" {
		errs = append(errs, "filename is required")
	}
	if len(p.Filename) > 255 {
		errs = append(errs, "filename must be 255 characters or less")
	}
	if p.Width <= 0 || p.Height <= 0 {
		errs = append(errs, "width and height must be positive")
	}
	if p.FileSize <= 0 {
		errs = append(errs, "file size must be positive")
	}
	if p.PriceOverrideCents != nil && *p.PriceOverrideCents < 0 {
		errs = append(errs, "price override must be non-negative")
	}

	if len(errs) > 0 {
		return &PhotoValidationError{Errors: errs}
	}

	return nil
}

// StoragePaths lists the variant objects in deletion order: objects are
// removed before the catalog record, so a mid-deletion failure leaves at
// worst an orphaned record over missing objects.
func (p *Photo) StoragePaths() []string {
	return []string{p.OriginalPath, p.WatermarkedPath, p.ThumbnailPath}
}

type PhotoValidationError struct {
	Errors []string
}

func (e *PhotoValidationError) Error() string {
	return fmt.Sprintf("photo validation failed: %s", strings.Join(e.Errors, "; "))
}

func IsPhotoValidationError(err error) bool {
	_, ok := err.(*PhotoValidationError)
	return ok
}
