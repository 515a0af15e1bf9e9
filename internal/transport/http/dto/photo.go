package dto

import (
	"time"

	"photo_commerce/internal/domain/models"

	"github.com/google/uuid"
)

// PhotoResponse carries signed display URLs, never raw storage paths. The
// original is only exposed to operators, and only as a signed URL.
type PhotoResponse struct {
	ID             uuid.UUID `json:"id"`
	GalleryID      uuid.UUID `json:"gallery_id"`
	Filename       string    `json:"filename"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	FileSize       int64     `json:"file_size"`
	SortOrder      int       `json:"sort_order"`
	PriceCents     *int64    `json:"price_override_cents,omitempty"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
	WatermarkedURL string    `json:"watermarked_url,omitempty"`
	OriginalURL    string    `json:"original_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// UploadFailure reports one file the batch pipeline rejected or lost.
type UploadFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// BatchUploadResponse summarizes a sequential multi-file ingest: uploaded
// and failed add up to the submitted count.
type BatchUploadResponse struct {
	Uploaded []PhotoResponse `json:"uploaded"`
	Failed   []UploadFailure `json:"failed,omitempty"`
}

type UpdateSortOrderRequest struct {
	SortOrder int `json:"sort_order" validate:"min=0"`
}

type UpdatePriceOverrideRequest struct {
	PriceCents *int64 `json:"price_cents" validate:"omitempty,min=0"`
}

func PhotoToResponse(p *models.Photo) PhotoResponse {
	return PhotoResponse{
		ID:         p.ID,
		GalleryID:  p.GalleryID,
		Filename:   p.Filename,
		Width:      p.Width,
		Height:     p.Height,
		FileSize:   p.FileSize,
		SortOrder:  p.SortOrder,
		PriceCents: p.PriceOverrideCents,
		CreatedAt:  p.CreatedAt,
	}
}
