// internal/database/database.go
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Dasione/ai-fitness/internal/models"
)

// InitDB opens the PostgreSQL connection. TranslateError is on so a unique
// index violation comes back as gorm.ErrDuplicatedKey regardless of driver.
func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Video{},
		&models.VideoAnalysis{},
	)
}
