package model

import "gorm.io/gorm"

// Discussion is a comment on a project. ParentID forms a reply tree;
// nesting depth is unbounded in storage, the UI caps interactive replies
// at depth two.
type Discussion struct {
	gorm.Model
	Content   string `gorm:"type:text;not null"`
	ProjectID uint   `gorm:"not null;index"`
	UserID    uint   `gorm:"not null;index"`
	ParentID  *uint  `gorm:"index"`

	AttachmentURL  *string `gorm:"type:varchar(1024)"`
	AttachmentName *string `gorm:"type:varchar(256)"`

	Project Project      `gorm:"foreignKey:ProjectID"`
	User    User         `gorm:"foreignKey:UserID"`
	Parent  *Discussion  `gorm:"foreignKey:ParentID"`
	Replies []Discussion `gorm:"foreignKey:ParentID"`
}
