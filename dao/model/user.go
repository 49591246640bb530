package model

import (
	"gorm.io/gorm"
)

// User is the basic entity of the system
type User struct {
	gorm.Model
	Name     string  `gorm:"type:varchar(64);not null"`
	Email    string  `gorm:"uniqueIndex;type:varchar(128);not null"`
	Password *string `gorm:"type:varchar(128)"`
	Role     Role    `gorm:"type:varchar(16);not null;default:'MEMBER'"`

	OwnedProjects []Project `gorm:"foreignKey:OwnerID"`
}
