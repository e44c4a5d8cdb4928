// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an account that owns recipes.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	ImageURL     string    `json:"image_url"`
	Bio          string    `gorm:"type:text" json:"bio"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
	Recipes      []Recipe  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
