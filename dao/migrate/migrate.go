// Package migrate applies the database schema and seed data.
package migrate

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/ucentricid/uproject-management/dao/model"
)

// Migrate runs all pending migrations. Safe to call on every start.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250901-initial-schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.User{},
					&model.Project{},
					&model.BoardColumn{},
					&model.Issue{},
					&model.Discussion{},
					&model.SystemSetting{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"system_settings", "discussions", "issues",
					"board_columns", "project_members", "projects", "users",
				)
			},
		},
		{
			ID: "20250901-seed-admin",
			Migrate: func(tx *gorm.DB) error {
				var count int64
				if err := tx.Model(&model.User{}).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return nil
				}
				hash, err := bcrypt.GenerateFromPassword([]byte("#Passw0rdPassw0rd"), bcrypt.DefaultCost)
				if err != nil {
					return err
				}
				password := string(hash)
				admin := model.User{
					Name:     "Administrator",
					Email:    "admin@localhost",
					Password: &password,
					Role:     model.RoleAdmin,
				}
				klog.Info("seeding initial admin user")
				return tx.Create(&admin).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Where("email = ?", "admin@localhost").Delete(&model.User{}).Error
			},
		},
	})
	return m.Migrate()
}
