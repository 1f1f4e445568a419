package sqlstore

import (
	"fmt"

	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/repositories"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the service owns
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserScore{},
		&models.ProgressRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// NewRepositories wires every gorm repository onto db
func NewRepositories(db *gorm.DB) *repositories.Repositories {
	return &repositories.Repositories{
		Users:    NewUserSQL(db),
		Scores:   NewScoreSQL(db),
		Progress: NewProgressStateSQL(db),
	}
}
