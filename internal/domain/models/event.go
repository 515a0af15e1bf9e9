package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is the parent production (a shoot, a match, a show) that galleries
// hang off. Kept minimal: the CRM owns the rich record.
type Event struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	StartsAt    *time.Time `json:"starts_at,omitempty" db:"starts_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// User exists only to gate operator endpoints; account lifecycle is owned by
// the main site's auth service.
type User struct {
	ID      uuid.UUID `json:"id" db:"id"`
	Email   string    `json:"email" db:"email"`
	IsAdmin bool      `json:"is_admin" db:"is_admin"`
}
