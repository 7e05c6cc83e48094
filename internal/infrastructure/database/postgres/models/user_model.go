package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel represents the database model for User.
// json tags name the fields that list requests may filter and sort on.
type UserModel struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name                 string     `gorm:"type:varchar(100);not null" json:"name"`
	Email                string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Photo                string     `gorm:"type:varchar(255);not null" json:"photo"`
	Role                 string     `gorm:"type:varchar(20);not null" json:"role"`
	PasswordHash         string     `gorm:"type:varchar(255);not null" json:"-"`
	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetHash    *string    `gorm:"type:varchar(64)" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	VerifyHash           *string    `gorm:"type:varchar(64)" json:"-"`
	VerifyExpires        *time.Time `json:"-"`
	Verified             bool       `gorm:"not null" json:"verified"`
	Active               bool       `gorm:"not null" json:"-"`
	CreatedAt            time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"not null" json:"updatedAt"`
}

func (UserModel) TableName() string {
	return "users"
}
