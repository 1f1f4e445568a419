package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a progress event
type EventType string

const (
	EventChallengeStarted   EventType = "challenge.started"
	EventQuizAnswered       EventType = "quiz.answered"
	EventChallengeCompleted EventType = "challenge.completed"
	EventLevelChanged       EventType = "level.changed"
	EventTopicCompleted     EventType = "topic.completed"
	EventProgressCleared    EventType = "progress.cleared"
)

const (
	eventSource  = "awareness-service"
	eventVersion = "1.0"
)

// ProgressEvent is the envelope published for every progress change
type ProgressEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	ClientID  string      `json:"client_id"`
	UserID    *uint       `json:"user_id,omitempty"`
	Data      interface{} `json:"data"`
}

type ChallengeStartedEvent struct {
	ChallengeID int    `json:"challenge_id"`
	Title       string `json:"title"`
	QuizCount   int    `json:"quiz_count"`
}

type QuizAnsweredEvent struct {
	ChallengeID   int     `json:"challenge_id"`
	QuizIndex     int     `json:"quiz_index"`
	Correct       bool    `json:"correct"`
	PointsAwarded float64 `json:"points_awarded"`
}

type ChallengeCompletedEvent struct {
	ChallengeID     int     `json:"challenge_id"`
	Score           int     `json:"score"` // percent correct in the run
	FirstCompletion bool    `json:"first_completion"`
	TotalPoints     float64 `json:"total_points"`
}

type LevelChangedEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type TopicCompletedEvent struct {
	TopicID   int    `json:"topic_id"`
	Minutes   int    `json:"minutes"`
	TimeSpent int    `json:"time_spent"`
	Level     string `json:"level"`
}

func newEvent(t EventType, clientID string, userID *uint, data interface{}) *ProgressEvent {
	return &ProgressEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		ClientID:  clientID,
		UserID:    userID,
		Data:      data,
	}
}

func NewChallengeStartedEvent(clientID string, userID *uint, challengeID int, title string, quizCount int) *ProgressEvent {
	return newEvent(EventChallengeStarted, clientID, userID, ChallengeStartedEvent{
		ChallengeID: challengeID,
		Title:       title,
		QuizCount:   quizCount,
	})
}

func NewQuizAnsweredEvent(clientID string, userID *uint, challengeID, quizIndex int, correct bool, points float64) *ProgressEvent {
	return newEvent(EventQuizAnswered, clientID, userID, QuizAnsweredEvent{
		ChallengeID:   challengeID,
		QuizIndex:     quizIndex,
		Correct:       correct,
		PointsAwarded: points,
	})
}

func NewChallengeCompletedEvent(clientID string, userID *uint, challengeID, score int, first bool, totalPoints float64) *ProgressEvent {
	return newEvent(EventChallengeCompleted, clientID, userID, ChallengeCompletedEvent{
		ChallengeID:     challengeID,
		Score:           score,
		FirstCompletion: first,
		TotalPoints:     totalPoints,
	})
}

func NewLevelChangedEvent(clientID string, userID *uint, from, to string) *ProgressEvent {
	return newEvent(EventLevelChanged, clientID, userID, LevelChangedEvent{From: from, To: to})
}

func NewTopicCompletedEvent(clientID string, userID *uint, topicID, minutes, timeSpent int, level string) *ProgressEvent {
	return newEvent(EventTopicCompleted, clientID, userID, TopicCompletedEvent{
		TopicID:   topicID,
		Minutes:   minutes,
		TimeSpent: timeSpent,
		Level:     level,
	})
}

func NewProgressClearedEvent(clientID string, userID *uint) *ProgressEvent {
	return newEvent(EventProgressCleared, clientID, userID, nil)
}
