package model

import (
	"time"

	"gorm.io/gorm"
)

// Issue belongs to one project and sits in one board column. Order is the
// position within the column; only the relative order matters, and after a
// reorder the touched columns are renumbered densely from zero.
type Issue struct {
	gorm.Model
	Title       string      `gorm:"type:varchar(256);not null"`
	Description *string     `gorm:"type:text"`
	Priority    Priority    `gorm:"type:varchar(16);not null;default:'MEDIUM'"`
	Type        IssueType   `gorm:"type:varchar(16);not null;default:'TASK'"`
	Status      IssueStatus `gorm:"type:varchar(16);not null;default:'TODO'"`
	Order       int         `gorm:"column:display_order;not null"`
	ProjectID   uint        `gorm:"not null;index"`
	ColumnID    uint        `gorm:"not null;index"`
	ReporterID  uint        `gorm:"not null"`
	AssigneeID  *uint       `gorm:"index"`
	DueDate     *time.Time

	// At most one attachment per issue.
	AttachmentURL  *string `gorm:"type:varchar(1024)"`
	AttachmentName *string `gorm:"type:varchar(256)"`

	Project  Project     `gorm:"foreignKey:ProjectID"`
	Column   BoardColumn `gorm:"foreignKey:ColumnID"`
	Assignee *User       `gorm:"foreignKey:AssigneeID"`
	Reporter User        `gorm:"foreignKey:ReporterID"`
}
