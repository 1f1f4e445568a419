package models

import (
	"encoding/json"
	"fmt"
)

type QuizKind string

const (
	KindMultipleChoice QuizKind = "mcq"
	KindScenario       QuizKind = "scenario"
	KindMatching       QuizKind = "matching"
	KindDragDrop       QuizKind = "drag_drop"
	KindInteractive    QuizKind = "interactive"
	KindSpotDifference QuizKind = "spot_difference"
	KindURLAnalyzer    QuizKind = "url_analyzer"
	KindRedFlags       QuizKind = "red_flags"
)

// QuizKinds lists every supported quiz kind.
var QuizKinds = []QuizKind{
	KindMultipleChoice,
	KindScenario,
	KindMatching,
	KindDragDrop,
	KindInteractive,
	KindSpotDifference,
	KindURLAnalyzer,
	KindRedFlags,
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

type Hotspot struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Label string `json:"label" validate:"required"`
}

type ImageSet struct {
	Legitimate string `json:"legitimate"`
	Phishing   string `json:"phishing"`
}

type EmailContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Quiz is a single gradable question. Display fields are populated
// according to Kind; Correct holds the expected Answer for that kind.
type Quiz struct {
	ID          int      `json:"id" validate:"required,min=1"`
	Kind        QuizKind `json:"type" validate:"required,quiz_kind"`
	Question    string   `json:"question" validate:"required"`
	Explanation string   `json:"explanation"`

	// Choice, matching and ordering
	Options []string `json:"options,omitempty"`
	Matches []string `json:"matches,omitempty"`

	// Multi-select variants
	URLs     []string      `json:"urls,omitempty"`
	Flags    []string      `json:"flags,omitempty"`
	Hotspots []Hotspot     `json:"hotspots,omitempty" validate:"dive"`
	ImageSet *ImageSet     `json:"image_set,omitempty"`
	Email    *EmailContent `json:"email_content,omitempty"`

	// Interactive
	Activity     string   `json:"activity,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Elements     []string `json:"elements,omitempty"`

	Correct Answer `json:"-"`
}

// ActivityPasswordBuilder is the interactive activity graded by password
// requirements instead of a stored answer.
const ActivityPasswordBuilder = "password_builder"

// GradedByPassword reports whether the quiz is a password_builder activity.
func (q *Quiz) GradedByPassword() bool {
	return q.Kind == KindInteractive && q.Activity == ActivityPasswordBuilder
}

type quizAlias Quiz

type quizJSON struct {
	quizAlias
	Correct json.RawMessage `json:"correct_answer,omitempty"`
}

func (q Quiz) MarshalJSON() ([]byte, error) {
	out := quizJSON{quizAlias: quizAlias(q)}
	if q.Correct != nil {
		raw, err := json.Marshal(q.Correct)
		if err != nil {
			return nil, err
		}
		out.Correct = raw
	}
	return json.Marshal(out)
}

func (q *Quiz) UnmarshalJSON(data []byte) error {
	var in quizJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*q = Quiz(in.quizAlias)
	q.Correct = nil

	if len(in.Correct) == 0 {
		return nil
	}
	answer, err := DecodeAnswer(q.Kind, in.Correct)
	if err != nil {
		return fmt.Errorf("quiz %d: correct_answer: %w", q.ID, err)
	}
	q.Correct = answer
	return nil
}

// WithoutAnswer returns a copy safe to show before the quiz is answered.
func (q Quiz) WithoutAnswer() Quiz {
	q.Correct = nil
	return q
}

// Challenge is a themed bundle of quizzes with an aggregate point value.
type Challenge struct {
	ID          int        `json:"id" validate:"required,min=1"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	Points      float64    `json:"points" validate:"gt=0"`
	Difficulty  Difficulty `json:"difficulty" validate:"required,difficulty"`
	Icon        string     `json:"icon"`
	Quizzes     []Quiz     `json:"quizzes" validate:"required,min=1,dive"`
}

// PointsPerQuiz is the share of the challenge points earned by one correct answer.
func (c *Challenge) PointsPerQuiz() float64 {
	if len(c.Quizzes) == 0 {
		return 0
	}
	return c.Points / float64(len(c.Quizzes))
}

// Summary returns the challenge without quizzes, for listings.
func (c *Challenge) Summary() ChallengeSummary {
	return ChallengeSummary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Points:      c.Points,
		Difficulty:  c.Difficulty,
		Icon:        c.Icon,
		QuizCount:   len(c.Quizzes),
	}
}

type ChallengeSummary struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Points      float64    `json:"points"`
	Difficulty  Difficulty `json:"difficulty"`
	Icon        string     `json:"icon"`
	QuizCount   int        `json:"quiz_count"`
}

type TopicType string

const (
	TopicVideo       TopicType = "video"
	TopicArticle     TopicType = "article"
	TopicInteractive TopicType = "interactive"
)

type Topic struct {
	ID              int       `json:"id" validate:"required,min=1"`
	Title           string    `json:"title" validate:"required"`
	Type            TopicType `json:"type" validate:"required,oneof=video article interactive"`
	DurationMinutes int       `json:"duration_minutes" validate:"min=1"`
	Description     string    `json:"description"`
	URL             string    `json:"url,omitempty"`
}

type LearningPath struct {
	ID          int        `json:"id" validate:"required,min=1"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	Level       Difficulty `json:"level" validate:"required,difficulty"`
	Topics      []Topic    `json:"topics" validate:"required,min=1,dive"`
}
