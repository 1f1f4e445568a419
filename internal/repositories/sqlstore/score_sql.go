package sqlstore

import (
	"context"
	"time"

	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/repositories"
	"gorm.io/gorm"
)

var scoreSortColumns = map[string]bool{
	"completed_at": true,
	"score":        true,
	"test_id":      true,
}

type ScoreSQL struct {
	db *gorm.DB
}

func NewScoreSQL(db *gorm.DB) repositories.ScoreRepository {
	return &ScoreSQL{db: db}
}

func (s *ScoreSQL) Create(ctx context.Context, score *models.UserScore) error {
	if score.CompletedAt.IsZero() {
		score.CompletedAt = time.Now().UTC()
	}
	return translateError(s.db.WithContext(ctx).Create(score).Error)
}

func (s *ScoreSQL) ListByUser(ctx context.Context, userID uint, filters repositories.ScoreFilters) ([]*models.UserScore, int64, error) {
	var scores []*models.UserScore
	var total int64

	query := s.db.WithContext(ctx).Model(&models.UserScore{}).Where("user_id = ?", userID)
	if filters.TestID != nil {
		query = query.Where("test_id = ?", *filters.TestID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, scoreSortColumns, "completed_at")
	if err := query.Find(&scores).Error; err != nil {
		return nil, 0, err
	}

	return scores, total, nil
}

// BestByUser returns the highest score per challenge
func (s *ScoreSQL) BestByUser(ctx context.Context, userID uint) (map[int]int, error) {
	var rows []struct {
		TestID int
		Best   int
	}
	err := s.db.WithContext(ctx).Model(&models.UserScore{}).
		Select("test_id, MAX(score) AS best").
		Where("user_id = ?", userID).
		Group("test_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	best := make(map[int]int, len(rows))
	for _, r := range rows {
		best[r.TestID] = r.Best
	}
	return best, nil
}
