package models

import "gorm.io/gorm"

// AllModels returns all models for migration.
// Users and groups are listed first since posts, comments and follows reference them.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
