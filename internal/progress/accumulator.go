package progress

import "github.com/cyberguard/awareness-service/internal/models"

// Options tunes accumulation rules.
type Options struct {
	// ReplayAwardsPoints lets a completed challenge earn points again when
	// replayed. When false, replays are review-only.
	ReplayAwardsPoints bool
}

// ApplyResult folds one evaluated answer into p and returns the updated
// progress. p is not modified.
func ApplyResult(p models.UserProgress, c *models.Challenge, quizIndex int, wasCorrect bool, totalPossiblePoints float64, opts Options) models.UserProgress {
	next := p
	next.CompletedChallenges = cloneInts(p.CompletedChallenges)

	if c == nil || len(c.Quizzes) == 0 {
		return Recompute(next, totalPossiblePoints)
	}

	replay := p.HasCompleted(c.ID)
	scored := p.HasScored(c.ID, quizIndex)
	if wasCorrect && (opts.ReplayAwardsPoints || (!replay && !scored)) {
		next.TotalPoints += c.PointsPerQuiz()
		if next.TotalQuizzes <= 0 || next.QuizzesCompleted < next.TotalQuizzes {
			next.QuizzesCompleted++
		}
		if !scored {
			next.ScoredQuizzes = cloneScored(p.ScoredQuizzes)
			next.ScoredQuizzes[c.ID] = append(next.ScoredQuizzes[c.ID], quizIndex)
		}
	}

	if quizIndex == len(c.Quizzes)-1 && !replay {
		next.CompletedChallenges = append(next.CompletedChallenges, c.ID)
	}

	return Recompute(next, totalPossiblePoints)
}

func cloneScored(m map[int][]int) map[int][]int {
	out := make(map[int][]int, len(m)+1)
	for id, idx := range m {
		out[id] = cloneInts(idx)
	}
	return out
}

// Recompute derives LevelProgress and Level from TotalPoints. The
// percentage is not capped.
func Recompute(p models.UserProgress, totalPossiblePoints float64) models.UserProgress {
	if totalPossiblePoints > 0 {
		p.LevelProgress = p.TotalPoints / totalPossiblePoints * 100
	} else {
		p.LevelProgress = 0
	}
	p.Level = ClassifyPoints(p.LevelProgress)
	return p
}
