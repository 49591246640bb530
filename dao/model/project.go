package model

import "gorm.io/gorm"

type Project struct {
	gorm.Model
	Name        string  `gorm:"type:varchar(128);not null"`
	Key         string  `gorm:"uniqueIndex;type:varchar(6);not null"`
	Description *string `gorm:"type:varchar(512)"`
	OwnerID     uint    `gorm:"not null;index"`

	Owner       User         `gorm:"foreignKey:OwnerID"`
	Members     []User       `gorm:"many2many:project_members"`
	Columns     []BoardColumn
	Issues      []Issue
	Discussions []Discussion
}

// BoardColumn is one lane of a project's kanban board. Order is the
// display position within the project.
type BoardColumn struct {
	gorm.Model
	Name      string `gorm:"type:varchar(64);not null"`
	Order     int    `gorm:"column:display_order;not null"`
	ProjectID uint   `gorm:"not null;index"`

	Project Project `gorm:"foreignKey:ProjectID"`
	Issues  []Issue `gorm:"foreignKey:ColumnID"`
}
