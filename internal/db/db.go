package db

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/prasetyo-adi/jobportal_be/internal/models"
)

// Connect opens the database. TranslateError lets handlers detect
// duplicate-key violations as gorm.ErrDuplicatedKey regardless of driver.
func Connect(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Job{},
		&models.Application{},
	)
}
