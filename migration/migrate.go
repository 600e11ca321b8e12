// migration/migrate.go
package migration

import (
	"verify-station/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Job{},
		&models.Scan{},
		&models.ShiftStats{},
	)
}
