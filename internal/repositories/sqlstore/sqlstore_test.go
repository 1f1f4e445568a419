package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func createUser(t *testing.T, repo repositories.UserRepository, email string) *models.User {
	t.Helper()
	user := &models.User{Username: "alice", Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func TestUserSQL(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := context.Background()

	user := createUser(t, repos.Users, "alice@example.com")

	found, err := repos.Users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, "hash", found.PasswordHash)

	exists, err := repos.Users.ExistsByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repos.Users.Create(ctx, &models.User{Username: "a2", Email: "alice@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	_, err = repos.Users.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = repos.Users.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestScoreSQL(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := context.Background()
	user := createUser(t, repos.Users, "bob@example.com")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, s := range []struct{ test, score int }{{1, 60}, {1, 100}, {2, 40}} {
		require.NoError(t, repos.Scores.Create(ctx, &models.UserScore{
			UserID:      user.ID,
			TestID:      s.test,
			Score:       s.score,
			CompletedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	scores, total, err := repos.Scores.ListByUser(ctx, user.ID, repositories.ScoreFilters{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, scores, 3)
	assert.Equal(t, 2, scores[0].TestID, "newest first")

	testID := 1
	scores, total, err = repos.Scores.ListByUser(ctx, user.ID, repositories.ScoreFilters{
		TestID:    &testID,
		SortBy:    "score",
		SortOrder: "asc",
		Limit:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, scores, 1)
	assert.Equal(t, 60, scores[0].Score)

	best, err := repos.Scores.BestByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 100, 2: 40}, best)

	require.NoError(t, repos.Users.Delete(ctx, user.ID))
	_, total, err = repos.Scores.ListByUser(ctx, user.ID, repositories.ScoreFilters{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestProgressStateSQL(t *testing.T) {
	repos := NewRepositories(newTestDB(t))
	ctx := context.Background()

	_, ok, err := repos.Progress.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repos.Progress.Set(ctx, "client-1", `{"version":1}`))
	require.NoError(t, repos.Progress.Set(ctx, "client-1", `{"version":1,"current_quiz_index":2}`))

	value, ok, err := repos.Progress.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"version":1,"current_quiz_index":2}`, value)

	require.NoError(t, repos.Progress.Delete(ctx, "client-1"))
	_, ok, err = repos.Progress.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, ok)
}
