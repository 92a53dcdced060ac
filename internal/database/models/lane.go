package models

import "github.com/google/uuid"

type Lane struct {
	Base
	Title    string    `gorm:"not null" json:"title"`
	Position float64   `gorm:"not null;index" json:"position"`
	BoardID  uuid.UUID `gorm:"type:uuid;index;not null" json:"board_id"`

	// Relationships
	Board *Board `gorm:"foreignKey:BoardID" json:"-"`
	Cards []Card `gorm:"foreignKey:LaneID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Lane) TableName() string {
	return "lanes"
}
