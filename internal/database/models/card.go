package models

import "github.com/google/uuid"

type Card struct {
	Base
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"default:''" json:"description"`
	Position    float64   `gorm:"not null;index" json:"position"`
	LaneID      uuid.UUID `gorm:"type:uuid;index;not null" json:"lane_id"`

	// Relationships
	Lane       *Lane      `gorm:"foreignKey:LaneID" json:"-"`
	Categories []Category `gorm:"many2many:card_categories" json:"categories,omitempty"`
}

func (Card) TableName() string {
	return "cards"
}
