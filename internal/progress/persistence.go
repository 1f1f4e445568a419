package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cyberguard/awareness-service/internal/models"
)

// StateVersion tags the serialized shape. Stored states with another
// version are discarded on load.
const StateVersion = 1

var ErrCorruptState = errors.New("stored progress state is unusable")

// Store is durable per-client key-value storage.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type stateRecord struct {
	Version            int                     `json:"version"`
	Progress           models.UserProgress     `json:"progress"`
	Learning           models.LearningProgress `json:"learning"`
	CurrentChallengeID *int                    `json:"current_challenge_id"`
	CurrentQuizIndex   int                     `json:"current_quiz_index"`
	CurrentCorrect     int                     `json:"current_correct"`
}

// Encode serializes the whole aggregate. The active challenge is stored by id.
func Encode(s models.State) (string, error) {
	rec := stateRecord{
		Version:          StateVersion,
		Progress:         s.Progress,
		Learning:         s.Learning,
		CurrentQuizIndex: s.CurrentQuizIndex,
		CurrentCorrect:   s.CurrentCorrect,
	}
	if s.CurrentChallenge != nil {
		id := s.CurrentChallenge.ID
		rec.CurrentChallengeID = &id
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	return string(b), nil
}

// Decode parses a serialized aggregate and re-resolves the active challenge
// against catalog.
func Decode(data string, catalog Catalog) (models.State, error) {
	var rec stateRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return models.State{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}
	if rec.Version != StateVersion {
		return models.State{}, fmt.Errorf("%w: version %d, want %d", ErrCorruptState, rec.Version, StateVersion)
	}

	s := models.State{
		Progress:         rec.Progress,
		Learning:         rec.Learning,
		CurrentQuizIndex: rec.CurrentQuizIndex,
		CurrentCorrect:   rec.CurrentCorrect,
	}
	if s.Progress.CompletedChallenges == nil {
		s.Progress.CompletedChallenges = []int{}
	}
	if s.Learning.CompletedTopics == nil {
		s.Learning.CompletedTopics = []int{}
	}
	if s.Learning.Certificates == nil {
		s.Learning.Certificates = []string{}
	}

	if rec.CurrentChallengeID != nil {
		c, ok := catalog.Challenge(*rec.CurrentChallengeID)
		if !ok {
			return models.State{}, fmt.Errorf("%w: unknown challenge %d", ErrCorruptState, *rec.CurrentChallengeID)
		}
		s.CurrentChallenge = c
	}
	if s.CurrentQuizIndex < 0 || (s.CurrentChallenge == nil && s.CurrentQuizIndex != 0) ||
		(s.CurrentChallenge != nil && s.CurrentQuizIndex > len(s.CurrentChallenge.Quizzes)) {
		return models.State{}, fmt.Errorf("%w: quiz index %d out of range", ErrCorruptState, s.CurrentQuizIndex)
	}
	return s, nil
}

// Save writes the aggregate under key as a single value.
func Save(ctx context.Context, store Store, key string, s models.State) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save state %q: %w", key, err)
	}
	return nil
}

// Load reads the aggregate under key. An absent key yields the initial
// state. A stored value that cannot be used also yields the initial state,
// together with an error wrapping ErrCorruptState that callers may log and
// otherwise ignore. Other errors come from the store itself.
func Load(ctx context.Context, store Store, key string, e *Engine) (models.State, error) {
	data, ok, err := store.Get(ctx, key)
	if err != nil {
		return models.State{}, fmt.Errorf("load state %q: %w", key, err)
	}
	if !ok {
		return e.InitialState(), nil
	}

	s, err := Decode(data, e.Catalog())
	if err != nil {
		return e.InitialState(), err
	}
	return s, nil
}
