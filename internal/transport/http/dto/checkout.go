package dto

import "github.com/google/uuid"

// CheckoutRequest is what the shopper submits. Either photo_ids or
// is_package must be provided; the service enforces the exclusivity.
type CheckoutRequest struct {
	Email        string      `json:"email" validate:"required,email"`
	CustomerName string      `json:"customer_name,omitempty"`
	PhotoIDs     []uuid.UUID `json:"photo_ids,omitempty"`
	IsPackage    bool        `json:"is_package"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	TotalCents  int64  `json:"total_cents"`
}
