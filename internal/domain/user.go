package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleClient   Role = "client"
	RoleCreative Role = "creative"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleCreative, RoleAdmin:
		return true
	}
	return false
}

// Metadata keys set at signup. The bag is free-form; these are the keys the
// resolver understands.
const (
	MetaFullName    = "full_name"
	MetaPhone       = "phone"
	MetaLocation    = "location"
	MetaUserType    = "user_type"
	MetaProfession  = "profession"
	MetaCategory    = "category"
	MetaCompanyName = "company_name"
	MetaIndustry    = "industry"
)

// User is the raw authenticated principal. Role-typed identity is never
// stored here; it is synthesized per session by the identity resolver from
// whichever profile record exists.
type User struct {
	ID              uuid.UUID         `json:"id" gorm:"type:uuid;primary_key"`
	Email           string            `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash    string            `json:"-" gorm:"not null"`
	EmailVerifiedAt *time.Time        `json:"emailVerifiedAt"`
	Metadata        datatypes.JSONMap `json:"metadata"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// Meta returns a metadata value as a string, "" when absent or non-string.
func (u *User) Meta(key string) string {
	if u.Metadata == nil {
		return ""
	}
	if v, ok := u.Metadata[key].(string); ok {
		return v
	}
	return ""
}

type UserSession struct {
	ID               uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID           uuid.UUID `json:"userId" gorm:"type:uuid;index;not null"`
	RefreshTokenHash string    `json:"-" gorm:"not null"`
	ExpiresAt        time.Time `json:"expiresAt" gorm:"not null"`
	CreatedAt        time.Time `json:"createdAt"`
}
