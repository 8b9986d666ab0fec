package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppUser is the resolved, role-typed identity used by application logic.
// It is synthesized on every session resolution and never persisted; exactly
// one of the resolver's branches (admin metadata, client profile, creative
// profile, metadata fallback) produces it.
type AppUser struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone,omitempty"`
	Location string    `json:"location,omitempty"`
	Role     Role      `json:"role"`
	Verified bool      `json:"verified"`
	Approved bool      `json:"approved"`

	// Client-only fields.
	CompanyName string `json:"companyName,omitempty"`
	Industry    string `json:"industry,omitempty"`

	// Creative-only back-reference; detail lives on the CreativeProfile row.
	CreativeProfileID *uuid.UUID `json:"creativeProfileId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
