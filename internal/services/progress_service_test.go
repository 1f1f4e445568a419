package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cyberguard/awareness-service/internal/cache"
	"github.com/cyberguard/awareness-service/internal/content"
	"github.com/cyberguard/awareness-service/internal/events"
	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/progress"
	"github.com/cyberguard/awareness-service/internal/repositories"
)

// MockScoreRepository records score rows written by the service
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) Create(ctx context.Context, score *models.UserScore) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *MockScoreRepository) ListByUser(ctx context.Context, userID uint, filters repositories.ScoreFilters) ([]*models.UserScore, int64, error) {
	args := m.Called(ctx, userID, filters)
	scores, _ := args.Get(0).([]*models.UserScore)
	return scores, int64(args.Int(1)), args.Error(2)
}

func (m *MockScoreRepository) BestByUser(ctx context.Context, userID uint) (map[int]int, error) {
	args := m.Called(ctx, userID)
	best, _ := args.Get(0).(map[int]int)
	return best, args.Error(1)
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}
func (failingStore) Set(context.Context, string, string) error {
	return errors.New("connection refused")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("connection refused") }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type progressFixture struct {
	service   ProgressService
	store     *cache.MemoryStore
	publisher *events.MockEventPublisher
	scores    *MockScoreRepository
}

func newProgressFixture(t *testing.T, catalog progress.Catalog, opts progress.Options) *progressFixture {
	t.Helper()
	f := &progressFixture{
		store:     cache.NewMemoryStore(),
		publisher: events.NewMockEventPublisher(discardLogger()),
		scores:    &MockScoreRepository{},
	}
	f.service = NewProgressService(ProgressServiceConfig{
		Engine:    progress.NewEngine(catalog, opts),
		Store:     f.store,
		Scores:    f.scores,
		Publisher: f.publisher,
		Logger:    discardLogger(),
	})
	return f
}

func raw(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// passwordChallengeAnswers answers every quiz of the "Password Security Mastery" challenge correctly
func passwordChallengeAnswers() []*SubmitRequest {
	password := "Corr3ct-Horse!Battery"
	return []*SubmitRequest{
		{Answer: raw([]int{2, 0, 4, 3, 1})},
		{Password: &password},
		{Answer: raw(1)},
		{Answer: raw(1)},
		{Answer: raw([]int{4, 2, 0, 1, 3})},
	}
}

func TestProgressService_FreshClient(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})

	view, err := f.service.GetProgress(context.Background(), "client-1")
	require.NoError(t, err)

	assert.Equal(t, models.LevelBeginner, view.Progress.Level)
	assert.Equal(t, 50, view.Progress.TotalQuizzes)
	assert.Empty(t, view.Progress.CompletedChallenges)
	assert.Nil(t, view.Session)
	assert.Equal(t, 10, view.Stats.TotalChallenges)
	assert.Equal(t, 0, f.store.Len())
}

func TestProgressService_InvalidClientID(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})
	ctx := context.Background()

	for _, id := range []string{"", "has space", "semi;colon", string(make([]byte, 65))} {
		_, err := f.service.GetProgress(ctx, id)
		assert.ErrorIs(t, err, ErrInvalidClientID, "id %q", id)
	}

	_, err := f.service.StartChallenge(ctx, Actor{ClientID: "../etc"}, 1)
	assert.ErrorIs(t, err, ErrInvalidClientID)
	assert.True(t, IsValidation(err))
}

func TestProgressService_CompleteChallenge(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})
	ctx := context.Background()
	userID := uint(42)
	actor := Actor{ClientID: "client-1", UserID: &userID}

	f.scores.On("Create", mock.Anything, mock.MatchedBy(func(s *models.UserScore) bool {
		return s.UserID == 42 && s.TestID == 1 && s.Score == 100
	})).Return(nil).Once()

	session, err := f.service.StartChallenge(ctx, actor, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, session.Challenge.ID)
	assert.Equal(t, 5, session.QuizCount)
	require.NotNil(t, session.Quiz)
	assert.Nil(t, session.Quiz.Correct, "quiz must be served without its answer")

	var last *SubmitResponse
	for i, req := range passwordChallengeAnswers() {
		last, err = f.service.SubmitAnswer(ctx, actor, req)
		require.NoError(t, err, "quiz %d", i)
		assert.True(t, last.Result.Correct, "quiz %d", i)
		assert.NotNil(t, last.CorrectAnswer)
		if i < 4 {
			assert.Empty(t, last.NewAchievements)
		}
	}

	assert.True(t, last.Result.ChallengeCompleted)
	assert.True(t, last.Result.FirstCompletion)
	assert.Equal(t, 100, last.Result.RunScore)
	assert.InDelta(t, 100.0, last.Progress.TotalPoints, 1e-9)
	assert.Equal(t, []int{1}, last.Progress.CompletedChallenges)
	assert.True(t, last.Session.Complete)
	assert.Nil(t, last.Session.Quiz)

	unlocked := make([]int, 0, len(last.NewAchievements))
	for _, a := range last.NewAchievements {
		unlocked = append(unlocked, a.ID)
	}
	assert.ElementsMatch(t, []int{1, 2}, unlocked)

	assert.Equal(t, []events.EventType{
		events.EventChallengeStarted,
		events.EventQuizAnswered, events.EventQuizAnswered, events.EventQuizAnswered,
		events.EventQuizAnswered, events.EventQuizAnswered,
		events.EventChallengeCompleted,
	}, f.publisher.Types())

	f.scores.AssertExpectations(t)

	// the completed session stays until reset
	_, err = f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Answer: raw(1)})
	assert.ErrorIs(t, err, ErrChallengeComplete)

	view, err := f.service.ResetSession(ctx, actor)
	require.NoError(t, err)
	assert.Nil(t, view.Session)
	assert.InDelta(t, 100.0, view.Progress.TotalPoints, 1e-9)
}

func TestProgressService_ReplayIsReviewOnly(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})
	ctx := context.Background()
	actor := Actor{ClientID: "client-1"}

	for round := 0; round < 2; round++ {
		_, err := f.service.StartChallenge(ctx, actor, 1)
		require.NoError(t, err)
		for _, req := range passwordChallengeAnswers() {
			_, err := f.service.SubmitAnswer(ctx, actor, req)
			require.NoError(t, err)
		}
	}

	view, err := f.service.GetProgress(ctx, "client-1")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, view.Progress.TotalPoints, 1e-9)
	assert.Equal(t, []int{1}, view.Progress.CompletedChallenges)
	assert.Equal(t, 5, view.Progress.QuizzesCompleted)

	// anonymous runs never touch the score table
	f.scores.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProgressService_SubmitAnswers(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})
	ctx := context.Background()
	actor := Actor{ClientID: "client-1"}

	_, err := f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Answer: raw(1)})
	assert.ErrorIs(t, err, ErrNoActiveChallenge)
	assert.True(t, IsBusinessRule(err))

	_, err = f.service.StartChallenge(ctx, actor, 99)
	assert.ErrorIs(t, err, ErrChallengeNotFound)
	assert.True(t, IsNotFound(err))

	_, err = f.service.StartChallenge(ctx, actor, 1)
	require.NoError(t, err)

	t.Run("empty answer is rejected without advancing", func(t *testing.T) {
		_, err := f.service.SubmitAnswer(ctx, actor, &SubmitRequest{})
		assert.True(t, IsValidation(err))

		_, err = f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Answer: json.RawMessage("null")})
		assert.True(t, IsValidation(err))

		session, err := f.service.CurrentSession(ctx, "client-1")
		require.NoError(t, err)
		assert.Equal(t, 0, session.QuizIndex)
	})

	t.Run("mistyped answer is graded incorrect", func(t *testing.T) {
		resp, err := f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Answer: raw("not a sequence")})
		require.NoError(t, err)
		assert.False(t, resp.Result.Correct)
		assert.Zero(t, resp.Result.PointsAwarded)
		assert.Equal(t, models.SequenceAnswer{2, 0, 4, 3, 1}, resp.CorrectAnswer)
	})

	t.Run("weak password fails the builder", func(t *testing.T) {
		weak := "password"
		resp, err := f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Password: &weak})
		require.NoError(t, err)
		assert.False(t, resp.Result.Correct)
		assert.Equal(t, 2, resp.Session.QuizIndex)
	})

	t.Run("correct choice earns a quiz share", func(t *testing.T) {
		resp, err := f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Answer: raw(1)})
		require.NoError(t, err)
		assert.True(t, resp.Result.Correct)
		assert.InDelta(t, 20.0, resp.Result.PointsAwarded, 1e-9)
	})
}

func TestProgressService_PasswordOnlyGradesPasswordBuilder(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})
	ctx := context.Background()
	actor := Actor{ClientID: "client-1"}
	strong := "Corr3ct-Horse!Battery"

	_, err := f.service.StartChallenge(ctx, actor, 2)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Answer: raw(0)})
		require.NoError(t, err)
	}

	// quiz 4 is a header_inspector activity
	_, err = f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Password: &strong})
	assert.True(t, IsValidation(err))

	session, err := f.service.CurrentSession(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, 3, session.QuizIndex)

	resp, err := f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Answer: raw(false), Password: &strong})
	require.NoError(t, err)
	assert.False(t, resp.Result.Correct)
	assert.Zero(t, resp.Result.PointsAwarded)
	assert.Equal(t, 4, resp.Session.QuizIndex)
}

func TestProgressService_LevelChangedEvent(t *testing.T) {
	catalog, err := content.Load([]byte(`[{
		"id": 1, "title": "Basics", "points": 10, "difficulty": "Beginner",
		"quizzes": [
			{"id": 1, "type": "mcq", "question": "Q1", "options": ["a", "b"], "correct_answer": 0},
			{"id": 2, "type": "mcq", "question": "Q2", "options": ["a", "b"], "correct_answer": 1}
		]
	}]`), nil)
	require.NoError(t, err)

	f := newProgressFixture(t, catalog, progress.Options{})
	ctx := context.Background()
	actor := Actor{ClientID: "client-1"}

	_, err = f.service.StartChallenge(ctx, actor, 1)
	require.NoError(t, err)

	resp, err := f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Answer: raw(0)})
	require.NoError(t, err)
	assert.Equal(t, models.LevelBeginner, resp.Result.PreviousLevel)
	assert.Equal(t, models.LevelIntermediate, resp.Result.Level)

	published := f.publisher.GetPublishedEvents()
	require.Len(t, published, 3)
	assert.Equal(t, events.EventLevelChanged, published[2].Type)
	data, ok := published[2].Data.(events.LevelChangedEvent)
	require.True(t, ok)
	assert.Equal(t, "Intermediate", data.To)
}

func TestProgressService_CorruptStateFailsSoft(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, "client-1", "{not json"))

	view, err := f.service.GetProgress(ctx, "client-1")
	require.NoError(t, err)
	assert.Zero(t, view.Progress.TotalPoints)

	_, err = f.service.StartChallenge(ctx, Actor{ClientID: "client-1"}, 2)
	require.NoError(t, err)

	session, err := f.service.CurrentSession(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, 2, session.Challenge.ID)
}

func TestProgressService_StoreFailure(t *testing.T) {
	svc := NewProgressService(ProgressServiceConfig{
		Engine:    progress.NewEngine(content.MustDefault(), progress.Options{}),
		Store:     failingStore{},
		Publisher: events.NewMockEventPublisher(discardLogger()),
		Logger:    discardLogger(),
	})

	_, err := svc.GetProgress(context.Background(), "client-1")
	assert.Error(t, err)
	assert.False(t, IsValidation(err))

	_, err = svc.StartChallenge(context.Background(), Actor{ClientID: "client-1"}, 1)
	assert.Error(t, err)
}

func TestProgressService_LearningAndClear(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})
	ctx := context.Background()
	actor := Actor{ClientID: "client-1"}

	view, err := f.service.CompleteTopic(ctx, actor, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, view.Learning.CompletedTopics)
	assert.Equal(t, 90, view.Learning.TimeSpent)

	view, err = f.service.RecordLearningTime(ctx, actor, 250)
	require.NoError(t, err)
	assert.Equal(t, 340, view.Learning.TimeSpent)
	assert.Equal(t, models.LevelIntermediate, view.Learning.CurrentLevel)

	_, err = f.service.CompleteTopic(ctx, actor, 999, nil)
	assert.ErrorIs(t, err, ErrTopicNotFound)

	_, err = f.service.RecordLearningTime(ctx, actor, -5)
	assert.True(t, IsValidation(err))

	require.NoError(t, f.service.ClearProgress(ctx, actor))
	assert.Equal(t, 0, f.store.Len())

	view, err = f.service.GetProgress(ctx, "client-1")
	require.NoError(t, err)
	assert.Zero(t, view.Learning.TimeSpent)

	types := f.publisher.Types()
	assert.Equal(t, events.EventTopicCompleted, types[0])
	assert.Equal(t, events.EventProgressCleared, types[len(types)-1])
}

func TestProgressService_Achievements(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})

	list, err := f.service.Achievements(context.Background(), "client-1")
	require.NoError(t, err)
	require.Len(t, list, 4)
	for _, a := range list {
		assert.False(t, a.Unlocked, a.Title)
	}
}

func TestProgressService_ConcurrentSubmissionsAreSerialised(t *testing.T) {
	f := newProgressFixture(t, content.MustDefault(), progress.Options{})
	ctx := context.Background()
	actor := Actor{ClientID: "client-1"}

	_, err := f.service.StartChallenge(ctx, actor, 3)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.SubmitAnswer(ctx, actor, &SubmitRequest{Answer: raw(1)})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	session, err := f.service.CurrentSession(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, 5, session.QuizIndex)
	assert.True(t, session.Complete)
}
