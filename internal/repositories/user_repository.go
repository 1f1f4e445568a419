package repositories

import (
	"context"

	"github.com/cyberguard/awareness-service/internal/models"
)

// UserRepository stores accounts for the optional login backend
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id uint) error
}
