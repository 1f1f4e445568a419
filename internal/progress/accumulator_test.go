package progress

import (
	"testing"

	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestApplyResult(t *testing.T) {
	c := newFakeCatalog().challenges[0]
	p := models.UserProgress{CompletedChallenges: []int{}, TotalQuizzes: 7}

	next := ApplyResult(p, c, 0, true, 200, Options{})
	assert.InDelta(t, 20.0, next.TotalPoints, 1e-9)
	assert.Equal(t, 1, next.QuizzesCompleted)
	assert.Empty(t, next.CompletedChallenges)
	assert.Zero(t, p.TotalPoints, "input untouched")
	assert.Nil(t, p.ScoredQuizzes, "input untouched")
	assert.Equal(t, map[int][]int{1: {0}}, next.ScoredQuizzes)

	again := ApplyResult(next, c, 0, true, 200, Options{})
	assert.InDelta(t, 20.0, again.TotalPoints, 1e-9, "already scored")
	assert.Equal(t, 1, again.QuizzesCompleted)

	next = ApplyResult(next, c, 4, false, 200, Options{})
	assert.Equal(t, []int{1}, next.CompletedChallenges)
	assert.InDelta(t, 20.0, next.TotalPoints, 1e-9)
}

func TestApplyResult_ClampsQuizzesCompleted(t *testing.T) {
	c := newFakeCatalog().challenges[0]
	p := models.UserProgress{CompletedChallenges: []int{1}, QuizzesCompleted: 7, TotalQuizzes: 7}

	next := ApplyResult(p, c, 0, true, 200, Options{ReplayAwardsPoints: true})
	assert.Equal(t, 7, next.QuizzesCompleted)
	assert.InDelta(t, 20.0, next.TotalPoints, 1e-9)
}

func TestApplyResult_NoChallenge(t *testing.T) {
	p := models.UserProgress{TotalPoints: 100}
	next := ApplyResult(p, nil, 0, true, 200, Options{})
	assert.Equal(t, 100.0, next.TotalPoints)
	assert.InDelta(t, 50.0, next.LevelProgress, 1e-9)
	assert.Equal(t, models.LevelIntermediate, next.Level)
}

func TestRecompute_ZeroTotal(t *testing.T) {
	next := Recompute(models.UserProgress{TotalPoints: 10}, 0)
	assert.Zero(t, next.LevelProgress)
	assert.Equal(t, models.LevelBeginner, next.Level)
}
