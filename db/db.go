package db

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/openbill/openbill/models"
	"github.com/openbill/openbill/utils"
)

// Connect opens the PostgreSQL connection, retrying with backoff so the
// server survives a database that is still coming up.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	var database *gorm.DB

	err := utils.Retry(ctx, utils.DefaultRetryConfig(), func() error {
		var err error
		database, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		return err
	})
	if err != nil {
		return nil, utils.WrapError(err, "connecting to database")
	}
	return database, nil
}

// AutoMigrate creates or updates the schema for every persisted model.
func AutoMigrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.User{},
		&models.UserStats{},
		&models.Invoice{},
		&models.LineItem{},
	)
}
