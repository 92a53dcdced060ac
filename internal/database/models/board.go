package models

import "github.com/google/uuid"

// DefaultBoardColor is the theme color applied when none is supplied.
const DefaultBoardColor = "#3B82F6"

type Board struct {
	Base
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"default:''" json:"description"`
	Color       string    `gorm:"default:'#3B82F6'" json:"color"` // hex theme color
	OwnerID     uuid.UUID `gorm:"type:uuid;index;not null" json:"owner_id"`

	// Relationships
	Owner *User  `gorm:"foreignKey:OwnerID" json:"-"`
	Lanes []Lane `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Board) TableName() string {
	return "boards"
}
