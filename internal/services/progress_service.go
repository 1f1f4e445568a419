package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/cyberguard/awareness-service/internal/events"
	"github.com/cyberguard/awareness-service/internal/metrics"
	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/progress"
	"github.com/cyberguard/awareness-service/internal/repositories"
)

// ProgressService runs the progress engine for one client at a time,
// persisting the aggregate after every change.
type ProgressService interface {
	GetProgress(ctx context.Context, clientID string) (*ProgressView, error)
	StartChallenge(ctx context.Context, actor Actor, challengeID int) (*SessionView, error)
	CurrentSession(ctx context.Context, clientID string) (*SessionView, error)
	SubmitAnswer(ctx context.Context, actor Actor, req *SubmitRequest) (*SubmitResponse, error)
	ResetSession(ctx context.Context, actor Actor) (*ProgressView, error)
	ClearProgress(ctx context.Context, actor Actor) error
	CompleteTopic(ctx context.Context, actor Actor, topicID int, minutes *int) (*ProgressView, error)
	RecordLearningTime(ctx context.Context, actor Actor, minutes int) (*ProgressView, error)
	Achievements(ctx context.Context, clientID string) ([]progress.Achievement, error)
}

// Actor identifies who is acting: always a client, optionally a signed-in user
type Actor struct {
	ClientID string
	UserID   *uint
}

// ===== REQUEST / RESPONSE TYPES =====

// SubmitRequest carries either a raw answer shaped by the quiz type or, for
// the password builder, the typed password.
type SubmitRequest struct {
	Answer   json.RawMessage `json:"answer"`
	Password *string         `json:"password,omitempty"`
}

type ProgressView struct {
	Progress models.UserProgress     `json:"progress"`
	Learning models.LearningProgress `json:"learning"`
	Stats    progress.Stats          `json:"stats"`
	Session  *SessionView            `json:"session,omitempty"`
}

// SessionView describes the active challenge. Quiz never carries its answer.
type SessionView struct {
	Challenge    models.ChallengeSummary `json:"challenge"`
	QuizIndex    int                     `json:"quiz_index"`
	QuizCount    int                     `json:"quiz_count"`
	CorrectSoFar int                     `json:"correct_so_far"`
	Complete     bool                    `json:"complete"`
	Quiz         *models.Quiz            `json:"quiz,omitempty"`
}

type SubmitResponse struct {
	Result          progress.Result        `json:"result"`
	CorrectAnswer   models.Answer          `json:"correct_answer"`
	Progress        models.UserProgress    `json:"progress"`
	Session         *SessionView           `json:"session"`
	NewAchievements []progress.Achievement `json:"new_achievements,omitempty"`
}

// ===== IMPLEMENTATION =====

type ProgressServiceConfig struct {
	Engine    *progress.Engine
	Store     progress.Store
	Scores    repositories.ScoreRepository // nil when accounts are disabled
	Publisher events.EventPublisher
	Logger    *slog.Logger
}

type progressService struct {
	engine    *progress.Engine
	store     progress.Store
	scores    repositories.ScoreRepository
	publisher events.EventPublisher
	logger    *ServiceLogger
	locks     *keyedMutex
}

func NewProgressService(cfg ProgressServiceConfig) ProgressService {
	return &progressService{
		engine:    cfg.Engine,
		store:     cfg.Store,
		scores:    cfg.Scores,
		publisher: cfg.Publisher,
		logger:    NewServiceLogger(cfg.Logger, LogConfig{Service: "awareness-service", Component: "progress"}),
		locks:     newKeyedMutex(),
	}
}

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidClientID reports whether id can be used as a storage key
func ValidClientID(id string) bool {
	return clientIDPattern.MatchString(id)
}

func (s *progressService) GetProgress(ctx context.Context, clientID string) (*ProgressView, error) {
	state, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return s.progressView(state), nil
}

func (s *progressService) StartChallenge(ctx context.Context, actor Actor, challengeID int) (*SessionView, error) {
	var view *SessionView
	err := s.mutate(ctx, "start_challenge", actor, func(state models.State) (models.State, []*events.ProgressEvent, error) {
		next, err := s.engine.Start(state, challengeID)
		if err != nil {
			return state, nil, err
		}
		view = sessionView(next)
		c := next.CurrentChallenge
		return next, []*events.ProgressEvent{
			events.NewChallengeStartedEvent(actor.ClientID, actor.UserID, c.ID, c.Title, len(c.Quizzes)),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *progressService) CurrentSession(ctx context.Context, clientID string) (*SessionView, error) {
	state, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !state.Active() {
		return nil, ErrNoActiveChallenge
	}
	return sessionView(state), nil
}

func (s *progressService) SubmitAnswer(ctx context.Context, actor Actor, req *SubmitRequest) (*SubmitResponse, error) {
	if len(req.Answer) == 0 && req.Password == nil {
		return nil, NewValidationError("answer", "is required", nil)
	}

	var resp *SubmitResponse
	var completed *progress.Result
	var kind models.QuizKind
	err := s.mutate(ctx, "submit_answer", actor, func(state models.State) (models.State, []*events.ProgressEvent, error) {
		quiz, ok := progress.CurrentQuiz(state)
		if !ok {
			if !state.Active() {
				return state, nil, ErrNoActiveChallenge
			}
			return state, nil, ErrChallengeComplete
		}

		kind = quiz.Kind
		before := progress.Achievements(state.Progress, s.engine.Catalog())

		var next models.State
		var result progress.Result
		var err error
		if req.Password != nil && quiz.GradedByPassword() {
			verdict := progress.CheckPasswordRequirements(*req.Password, quiz.Requirements)
			next, result, err = s.engine.SubmitVerdict(state, verdict)
		} else {
			// a mistyped answer is graded as incorrect rather than rejected
			answer, decodeErr := models.DecodeAnswer(quiz.Kind, req.Answer)
			if errors.Is(decodeErr, models.ErrEmptyAnswer) {
				return state, nil, NewValidationError("answer", "is required", nil)
			}
			if decodeErr != nil {
				answer = nil
			}
			next, result, err = s.engine.Submit(state, answer)
		}
		if err != nil {
			return state, nil, err
		}

		resp = &SubmitResponse{
			Result:          result,
			CorrectAnswer:   quiz.Correct,
			Progress:        next.Progress,
			Session:         sessionView(next),
			NewAchievements: newlyUnlocked(before, progress.Achievements(next.Progress, s.engine.Catalog())),
		}

		evts := []*events.ProgressEvent{
			events.NewQuizAnsweredEvent(actor.ClientID, actor.UserID, result.ChallengeID, result.QuizIndex, result.Correct, result.PointsAwarded),
		}
		if result.ChallengeCompleted {
			completed = &result
			evts = append(evts, events.NewChallengeCompletedEvent(actor.ClientID, actor.UserID, result.ChallengeID, result.RunScore, result.FirstCompletion, next.Progress.TotalPoints))
		}
		if result.LevelChanged() {
			evts = append(evts, events.NewLevelChangedEvent(actor.ClientID, actor.UserID, string(result.PreviousLevel), string(result.Level)))
		}
		return next, evts, nil
	})
	if err != nil {
		return nil, err
	}

	metrics.QuizSubmitted(string(kind), resp.Result.Correct)
	if completed != nil {
		metrics.ChallengeCompleted(completed.ChallengeID, completed.FirstCompletion)
		s.recordScore(ctx, actor, completed)
	}
	return resp, nil
}

func (s *progressService) ResetSession(ctx context.Context, actor Actor) (*ProgressView, error) {
	var view *ProgressView
	err := s.mutate(ctx, "reset_session", actor, func(state models.State) (models.State, []*events.ProgressEvent, error) {
		next := s.engine.Reset(state)
		view = s.progressView(next)
		return next, nil, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *progressService) ClearProgress(ctx context.Context, actor Actor) error {
	if !ValidClientID(actor.ClientID) {
		return ErrInvalidClientID
	}
	start := time.Now()
	unlock := s.locks.Lock(actor.ClientID)
	defer unlock()

	err := s.store.Delete(ctx, actor.ClientID)
	s.logger.LogOperation(ctx, "clear_progress", actor.ClientID, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	s.publish(ctx, events.NewProgressClearedEvent(actor.ClientID, actor.UserID))
	return nil
}

// CompleteTopic marks a topic done. A nil minutes counts the topic's
// nominal duration.
func (s *progressService) CompleteTopic(ctx context.Context, actor Actor, topicID int, minutes *int) (*ProgressView, error) {
	var view *ProgressView
	err := s.mutate(ctx, "complete_topic", actor, func(state models.State) (models.State, []*events.ProgressEvent, error) {
		topic, ok := s.engine.Catalog().Topic(topicID)
		if !ok {
			return state, nil, ErrTopicNotFound
		}
		spent := topic.DurationMinutes
		if minutes != nil {
			spent = *minutes
		}

		next, err := s.engine.CompleteTopic(state, topicID, spent)
		if err != nil {
			return state, nil, err
		}
		view = s.progressView(next)
		return next, []*events.ProgressEvent{
			events.NewTopicCompletedEvent(actor.ClientID, actor.UserID, topicID, spent, next.Learning.TimeSpent, string(next.Learning.CurrentLevel)),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.TopicCompleted()
	return view, nil
}

func (s *progressService) RecordLearningTime(ctx context.Context, actor Actor, minutes int) (*ProgressView, error) {
	var view *ProgressView
	err := s.mutate(ctx, "record_learning_time", actor, func(state models.State) (models.State, []*events.ProgressEvent, error) {
		next, err := s.engine.RecordLearningTime(state, minutes)
		if err != nil {
			return state, nil, err
		}
		view = s.progressView(next)
		return next, nil, nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *progressService) Achievements(ctx context.Context, clientID string) ([]progress.Achievement, error) {
	state, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return progress.Achievements(state.Progress, s.engine.Catalog()), nil
}

// ===== HELPERS =====

// load reads the client's state. Unusable stored state is logged and
// replaced by the initial state.
func (s *progressService) load(ctx context.Context, clientID string) (models.State, error) {
	if !ValidClientID(clientID) {
		return models.State{}, ErrInvalidClientID
	}
	state, err := progress.Load(ctx, s.store, clientID, s.engine)
	if errors.Is(err, progress.ErrCorruptState) {
		s.logger.Warn(ctx, "discarding unusable progress state", "client_id", clientID, "error", err)
		return state, nil
	}
	return state, err
}

type mutation func(models.State) (models.State, []*events.ProgressEvent, error)

// mutate runs load, apply and save under the client's lock, then publishes
// the produced events.
func (s *progressService) mutate(ctx context.Context, operation string, actor Actor, apply mutation) (err error) {
	start := time.Now()
	defer func() {
		s.logger.LogOperation(ctx, operation, actor.ClientID, time.Since(start), err)
	}()

	if !ValidClientID(actor.ClientID) {
		return ErrInvalidClientID
	}

	unlock := s.locks.Lock(actor.ClientID)
	defer unlock()

	state, err := s.load(ctx, actor.ClientID)
	if err != nil {
		return err
	}

	next, evts, err := apply(state)
	if err != nil {
		return err
	}

	if err := progress.Save(ctx, s.store, actor.ClientID, next); err != nil {
		return err
	}

	for _, e := range evts {
		s.publish(ctx, e)
	}
	return nil
}

func (s *progressService) publish(ctx context.Context, e *events.ProgressEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProgressEvent(ctx, e); err != nil {
		metrics.EventPublishFailed()
		s.logger.Warn(ctx, "failed to publish progress event", "event_type", e.Type, "error", err)
	}
}

func (s *progressService) recordScore(ctx context.Context, actor Actor, result *progress.Result) {
	if s.scores == nil || actor.UserID == nil {
		return
	}
	score := &models.UserScore{
		UserID:      *actor.UserID,
		TestID:      result.ChallengeID,
		Score:       result.RunScore,
		CompletedAt: time.Now().UTC(),
	}
	if err := s.scores.Create(ctx, score); err != nil {
		s.logger.Warn(ctx, "failed to record score", "user_id", *actor.UserID, "challenge_id", result.ChallengeID, "error", err)
	}
}

func (s *progressService) progressView(state models.State) *ProgressView {
	view := &ProgressView{
		Progress: state.Progress,
		Learning: state.Learning,
		Stats:    progress.Summarize(state.Progress, s.engine.Catalog()),
	}
	if state.Active() {
		view.Session = sessionView(state)
	}
	return view
}

func sessionView(state models.State) *SessionView {
	c := state.CurrentChallenge
	view := &SessionView{
		Challenge:    c.Summary(),
		QuizIndex:    state.CurrentQuizIndex,
		QuizCount:    len(c.Quizzes),
		CorrectSoFar: state.CurrentCorrect,
		Complete:     progress.IsComplete(state),
	}
	if quiz, ok := progress.CurrentQuiz(state); ok {
		q := quiz.WithoutAnswer()
		view.Quiz = &q
	}
	return view
}

func newlyUnlocked(before, after []progress.Achievement) []progress.Achievement {
	was := make(map[int]bool, len(before))
	for _, a := range before {
		was[a.ID] = a.Unlocked
	}
	var out []progress.Achievement
	for _, a := range after {
		if a.Unlocked && !was[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
