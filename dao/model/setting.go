package model

import "gorm.io/gorm"

// SystemSetting is a process-wide key/value configuration row (site
// title, dashboard branding). Read through on every request, no cache.
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"uniqueIndex;type:varchar(64);not null"`
	Value string `gorm:"type:varchar(512);not null"`
}
