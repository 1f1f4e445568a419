package repositories

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint would be violated
var ErrDuplicate = errors.New("record already exists")

// ===== SHARED FILTER STRUCTS =====

type ScoreFilters struct {
	TestID    *int   `json:"test_id"`
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortBy    string `json:"sort_by"`    // "completed_at", "score", "test_id"
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

// ProgressStateRepository persists serialized per-client progress. It
// satisfies progress.Store.
type ProgressStateRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Repositories bundles the relational repositories
type Repositories struct {
	Users    UserRepository
	Scores   ScoreRepository
	Progress ProgressStateRepository
}
