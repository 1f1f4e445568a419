package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressStateSQL keeps serialized progress in the progress_states table
type ProgressStateSQL struct {
	db *gorm.DB
}

func NewProgressStateSQL(db *gorm.DB) repositories.ProgressStateRepository {
	return &ProgressStateSQL{db: db}
}

func (p *ProgressStateSQL) Get(ctx context.Context, key string) (string, bool, error) {
	var rec models.ProgressRecord
	err := p.db.WithContext(ctx).Where("client_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(rec.Data), true, nil
}

// Set upserts the value for key
func (p *ProgressStateSQL) Set(ctx context.Context, key, value string) error {
	rec := models.ProgressRecord{
		Key:       key,
		Data:      datatypes.JSON(value),
		UpdatedAt: time.Now().UTC(),
	}
	return p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
}

func (p *ProgressStateSQL) Delete(ctx context.Context, key string) error {
	return p.db.WithContext(ctx).Where("client_key = ?", key).Delete(&models.ProgressRecord{}).Error
}
