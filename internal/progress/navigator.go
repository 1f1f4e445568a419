package progress

import (
	"errors"

	"github.com/cyberguard/awareness-service/internal/models"
)

var (
	ErrNoActiveChallenge = errors.New("no active challenge")
	ErrChallengeComplete = errors.New("active challenge has no remaining quizzes")
)

// Start makes c the active challenge at its first quiz, abandoning any
// challenge in progress. Points already scored are kept.
func Start(s models.State, c *models.Challenge) models.State {
	s.CurrentChallenge = c
	s.CurrentQuizIndex = 0
	s.CurrentCorrect = 0
	return s
}

// IsComplete reports whether every quiz of the active challenge has been
// submitted. The session stays on the challenge until Reset.
func IsComplete(s models.State) bool {
	return s.CurrentChallenge != nil && s.CurrentQuizIndex >= len(s.CurrentChallenge.Quizzes)
}

// Submit records the verdict for the current quiz and advances the index.
func Submit(s models.State, wasCorrect bool, totalPossiblePoints float64, opts Options) (models.State, error) {
	if s.CurrentChallenge == nil {
		return s, ErrNoActiveChallenge
	}
	if IsComplete(s) {
		return s, ErrChallengeComplete
	}

	s.Progress = ApplyResult(s.Progress, s.CurrentChallenge, s.CurrentQuizIndex, wasCorrect, totalPossiblePoints, opts)
	if wasCorrect {
		s.CurrentCorrect++
	}
	s.CurrentQuizIndex++
	return s, nil
}

// Reset returns the session to idle.
func Reset(s models.State) models.State {
	s.CurrentChallenge = nil
	s.CurrentQuizIndex = 0
	s.CurrentCorrect = 0
	return s
}

// CurrentQuiz returns the quiz being presented, if any.
func CurrentQuiz(s models.State) (*models.Quiz, bool) {
	if s.CurrentChallenge == nil || IsComplete(s) || s.CurrentQuizIndex < 0 {
		return nil, false
	}
	return &s.CurrentChallenge.Quizzes[s.CurrentQuizIndex], true
}
