package database

import "recipebox/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Users come first so the recipes foreign key has a table to reference.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Recipe{},
	}
}
