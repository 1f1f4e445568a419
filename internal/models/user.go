package models

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"not null;size:255"`
	Email        string    `json:"email" gorm:"uniqueIndex:idx_user_email;not null;size:255"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null;size:255"`
	CreatedAt    time.Time `json:"created_at"`

	Scores []UserScore `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// UserScore records one completed challenge run. TestID is the challenge id,
// Score the percentage of correct answers in that run.
type UserScore struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index:idx_user_scores_user_id"`
	TestID      int       `json:"test_id" gorm:"not null;index:idx_user_scores_test_id"`
	Score       int       `json:"score" gorm:"not null"`
	CompletedAt time.Time `json:"completed_at" gorm:"not null"`
}

func (UserScore) TableName() string {
	return "user_scores"
}

// ProgressRecord is the SQL-backed key-value row holding a serialized State.
type ProgressRecord struct {
	Key       string         `gorm:"column:client_key;primaryKey;size:255"`
	Data      datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (ProgressRecord) TableName() string {
	return "progress_states"
}
