package models

// Category is a global label attachable to any card. Categories are not
// board-scoped and carry no owner.
type Category struct {
	Base
	Name  string `gorm:"uniqueIndex;not null" json:"name"`
	Color string `gorm:"not null" json:"color"` // hex color code

	// Relationships
	Cards []Card `gorm:"many2many:card_categories" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
