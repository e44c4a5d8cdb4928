package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// MinInstructionsLength is the shortest instructions text a recipe may carry,
// counted in characters.
const MinInstructionsLength = 50

// Recipe is a user-owned recipe. The owning user is preloaded on reads.
type Recipe struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Title             string    `gorm:"not null" json:"title"`
	Instructions      string    `gorm:"type:text;not null" json:"instructions"`
	MinutesToComplete *int      `json:"minutes_to_complete"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	User              *User     `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

// Validate checks the invariants every persisted recipe must hold.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(r.Instructions) < MinInstructionsLength {
		return NewValidationError("Instructions must be at least 50 characters long")
	}
	if r.MinutesToComplete != nil && *r.MinutesToComplete < 0 {
		return NewValidationError("Minutes to complete cannot be negative")
	}
	if r.UserID == 0 {
		return NewValidationError("Recipe must belong to a user")
	}
	return nil
}

// BeforeSave runs Validate so that no write path can persist an invalid recipe.
func (r *Recipe) BeforeSave(_ *gorm.DB) error {
	return r.Validate()
}
