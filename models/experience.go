package models

import (
	"time"

	"gorm.io/gorm"
)

// Experience is a desert tour package offered as a booking add-on.
type Experience struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name           string  `gorm:"size:128;uniqueIndex" json:"name"`
	PricePerPerson float64 `gorm:"column:price_per_person" json:"price"`
	Duration       string  `gorm:"size:64" json:"duration,omitempty"`
	Description    string  `gorm:"type:text" json:"description,omitempty"`
	SortOrder      int     `gorm:"default:0" json:"-"`

	CreatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
