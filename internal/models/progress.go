package models

import "time"

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelExpert       Level = "Expert"
)

// UserProgress is the cumulative record of correctness and completion
// across all challenges.
type UserProgress struct {
	CompletedChallenges []int   `json:"completed_challenges"`
	TotalPoints         float64 `json:"total_points"`
	QuizzesCompleted    int     `json:"quizzes_completed"`
	TotalQuizzes        int     `json:"total_quizzes"`
	Level               Level   `json:"level"`
	LevelProgress       float64 `json:"level_progress"`
	// ScoredQuizzes maps a challenge id to the quiz indexes that already
	// earned points.
	ScoredQuizzes map[int][]int `json:"scored_quizzes,omitempty"`
}

// HasCompleted reports whether challengeID is in CompletedChallenges.
func (p UserProgress) HasCompleted(challengeID int) bool {
	for _, id := range p.CompletedChallenges {
		if id == challengeID {
			return true
		}
	}
	return false
}

// HasScored reports whether the quiz at quizIndex of challengeID already
// earned points.
func (p UserProgress) HasScored(challengeID, quizIndex int) bool {
	for _, idx := range p.ScoredQuizzes[challengeID] {
		if idx == quizIndex {
			return true
		}
	}
	return false
}

// LearningProgress tracks time spent on learning-path topics. Its level is
// derived from minutes, independent of UserProgress.Level.
type LearningProgress struct {
	CompletedTopics []int     `json:"completed_topics"`
	TimeSpent       int       `json:"time_spent"` // minutes
	CurrentLevel    Level     `json:"current_level"`
	LastActivity    time.Time `json:"last_activity"`
	Certificates    []string  `json:"certificates"`
}

func (l LearningProgress) HasCompletedTopic(topicID int) bool {
	for _, id := range l.CompletedTopics {
		if id == topicID {
			return true
		}
	}
	return false
}

// State is the whole per-client aggregate. CurrentChallenge is nil while
// idle; CurrentQuizIndex is in [0, len(CurrentChallenge.Quizzes)].
type State struct {
	Progress         UserProgress
	Learning         LearningProgress
	CurrentChallenge *Challenge
	CurrentQuizIndex int
	// CurrentCorrect counts correct answers in the active run.
	CurrentCorrect int
}

// Active reports whether a challenge is in progress.
func (s State) Active() bool {
	return s.CurrentChallenge != nil
}
