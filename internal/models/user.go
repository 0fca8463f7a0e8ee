package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a player. Identity is asserted by the fronting proxy.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
