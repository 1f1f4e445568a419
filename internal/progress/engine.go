package progress

import (
	"errors"
	"math"
	"time"

	"github.com/cyberguard/awareness-service/internal/models"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrTopicNotFound     = errors.New("topic not found")
	ErrInvalidDuration   = errors.New("duration must not be negative")
)

// Catalog is the read-only content the engine scores against.
type Catalog interface {
	Challenge(id int) (*models.Challenge, bool)
	Challenges() []*models.Challenge
	Topic(id int) (*models.Topic, bool)
	TotalPossiblePoints() float64
	TotalQuizzes() int
}

// Result describes the effect of one submission.
type Result struct {
	ChallengeID        int          `json:"challenge_id"`
	QuizIndex          int          `json:"quiz_index"`
	Correct            bool         `json:"correct"`
	Explanation        string       `json:"explanation"`
	PointsAwarded      float64      `json:"points_awarded"`
	ChallengeCompleted bool         `json:"challenge_completed"`
	FirstCompletion    bool         `json:"first_completion"`
	RunScore           int          `json:"run_score"` // percent correct, set once completed
	PreviousLevel      models.Level `json:"previous_level"`
	Level              models.Level `json:"level"`
}

// LevelChanged reports whether the submission moved the point level.
func (r Result) LevelChanged() bool {
	return r.PreviousLevel != r.Level
}

// Engine applies user actions to a State. It holds no state of its own;
// every method takes the current aggregate and returns the next one.
type Engine struct {
	catalog Catalog
	opts    Options
	now     func() time.Time
}

func NewEngine(catalog Catalog, opts Options) *Engine {
	return &Engine{
		catalog: catalog,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Catalog returns the content the engine was built with.
func (e *Engine) Catalog() Catalog {
	return e.catalog
}

// InitialState is the zero-value aggregate for a new client.
func (e *Engine) InitialState() models.State {
	return models.State{
		Progress: models.UserProgress{
			CompletedChallenges: []int{},
			TotalQuizzes:        e.catalog.TotalQuizzes(),
			Level:               models.LevelBeginner,
		},
		Learning: models.LearningProgress{
			CompletedTopics: []int{},
			CurrentLevel:    models.LevelBeginner,
			Certificates:    []string{},
		},
	}
}

// Start activates the challenge with the given id.
func (e *Engine) Start(s models.State, challengeID int) (models.State, error) {
	c, ok := e.catalog.Challenge(challengeID)
	if !ok {
		return s, ErrChallengeNotFound
	}
	s.Progress.TotalQuizzes = e.catalog.TotalQuizzes()
	return Start(s, c), nil
}

// Submit evaluates answer against the current quiz and advances the session.
// A nil or mistyped answer counts as incorrect.
func (e *Engine) Submit(s models.State, answer models.Answer) (models.State, Result, error) {
	quiz, ok := CurrentQuiz(s)
	if !ok {
		if s.CurrentChallenge == nil {
			return s, Result{}, ErrNoActiveChallenge
		}
		return s, Result{}, ErrChallengeComplete
	}
	return e.SubmitVerdict(s, EvaluateQuiz(quiz, answer))
}

// SubmitVerdict advances the session with an already computed verdict.
func (e *Engine) SubmitVerdict(s models.State, correct bool) (models.State, Result, error) {
	quiz, ok := CurrentQuiz(s)
	if !ok {
		if s.CurrentChallenge == nil {
			return s, Result{}, ErrNoActiveChallenge
		}
		return s, Result{}, ErrChallengeComplete
	}

	c := s.CurrentChallenge
	result := Result{
		ChallengeID:   c.ID,
		QuizIndex:     s.CurrentQuizIndex,
		Correct:       correct,
		Explanation:   quiz.Explanation,
		PreviousLevel: s.Progress.Level,
	}
	wasCompleted := s.Progress.HasCompleted(c.ID)
	pointsBefore := s.Progress.TotalPoints

	next, err := Submit(s, correct, e.catalog.TotalPossiblePoints(), e.opts)
	if err != nil {
		return s, Result{}, err
	}

	result.PointsAwarded = next.Progress.TotalPoints - pointsBefore
	result.Level = next.Progress.Level
	result.ChallengeCompleted = IsComplete(next)
	result.FirstCompletion = !wasCompleted && next.Progress.HasCompleted(c.ID)
	if result.ChallengeCompleted {
		result.RunScore = int(math.Round(float64(next.CurrentCorrect) * 100 / float64(len(c.Quizzes))))
	}
	return next, result, nil
}

// Reset abandons the active challenge.
func (e *Engine) Reset(s models.State) models.State {
	return Reset(s)
}

// CompleteTopic marks a learning topic done and adds the minutes spent on it.
func (e *Engine) CompleteTopic(s models.State, topicID, minutes int) (models.State, error) {
	if _, ok := e.catalog.Topic(topicID); !ok {
		return s, ErrTopicNotFound
	}
	if minutes < 0 {
		return s, ErrInvalidDuration
	}

	learning := s.Learning
	learning.CompletedTopics = cloneInts(s.Learning.CompletedTopics)
	if !learning.HasCompletedTopic(topicID) {
		learning.CompletedTopics = append(learning.CompletedTopics, topicID)
	}
	s.Learning = e.addTime(learning, minutes)
	return s, nil
}

// RecordLearningTime adds minutes of study outside a specific topic.
func (e *Engine) RecordLearningTime(s models.State, minutes int) (models.State, error) {
	if minutes < 0 {
		return s, ErrInvalidDuration
	}
	learning := s.Learning
	learning.CompletedTopics = cloneInts(s.Learning.CompletedTopics)
	s.Learning = e.addTime(learning, minutes)
	return s, nil
}

func (e *Engine) addTime(l models.LearningProgress, minutes int) models.LearningProgress {
	l.TimeSpent += minutes
	l.CurrentLevel = ClassifyTime(l.TimeSpent, l.CurrentLevel)
	l.LastActivity = e.now()
	return l
}

func cloneInts(src []int) []int {
	out := make([]int, len(src))
	copy(out, src)
	return out
}
