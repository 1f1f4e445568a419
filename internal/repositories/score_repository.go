package repositories

import (
	"context"

	"github.com/cyberguard/awareness-service/internal/models"
)

// ScoreRepository records completed challenge runs per user
type ScoreRepository interface {
	Create(ctx context.Context, score *models.UserScore) error
	ListByUser(ctx context.Context, userID uint, filters ScoreFilters) ([]*models.UserScore, int64, error)
	BestByUser(ctx context.Context, userID uint) (map[int]int, error)
}
