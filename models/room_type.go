package models

import (
	"time"

	"gorm.io/gorm"
)

// RoomType is a room category shown on the rooms page.
// Bookable rows carry the Key the booking form prices against.
type RoomType struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Key         string  `gorm:"size:64;uniqueIndex" json:"key"`
	TypeName    string  `gorm:"size:128" json:"typeName"`
	Description string  `gorm:"type:text" json:"description"`
	NightlyRate float64 `gorm:"column:nightly_rate" json:"nightlyRate"`
	MaxGuests   uint    `json:"maxGuests"`
	ImageURL    string  `gorm:"size:255" json:"imageUrl,omitempty"`
	Bookable    bool    `gorm:"default:true" json:"bookable"`
	SortOrder   int     `gorm:"default:0" json:"-"`

	CreatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
