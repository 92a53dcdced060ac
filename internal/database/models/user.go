package models

type User struct {
	Base
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsVerified   bool   `gorm:"default:false" json:"is_verified"`

	// Present only while the account is unverified; cleared on confirmation.
	VerificationToken string `gorm:"index" json:"-"`

	// Relationships
	Boards []Board `gorm:"foreignKey:OwnerID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
