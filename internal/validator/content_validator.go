package validator

import (
	"fmt"

	"github.com/cyberguard/awareness-service/internal/models"
)

// ContentValidator checks that quiz content is consistent with its kind
type ContentValidator struct{}

// NewContentValidator creates a new content validator
func NewContentValidator() *ContentValidator {
	return &ContentValidator{}
}

// ValidateChallenge validates every quiz of a challenge
func (v *ContentValidator) ValidateChallenge(c *models.Challenge) error {
	if len(c.Quizzes) == 0 {
		return fmt.Errorf("challenge %d: must have at least 1 quiz", c.ID)
	}

	seen := make(map[int]bool, len(c.Quizzes))
	for i := range c.Quizzes {
		q := &c.Quizzes[i]
		if seen[q.ID] {
			return fmt.Errorf("challenge %d: duplicate quiz id %d", c.ID, q.ID)
		}
		seen[q.ID] = true

		if err := v.ValidateQuiz(q); err != nil {
			return fmt.Errorf("challenge %d: quiz %d: %w", c.ID, q.ID, err)
		}
	}
	return nil
}

// ValidateQuiz validates quiz content based on quiz kind
func (v *ContentValidator) ValidateQuiz(q *models.Quiz) error {
	if q.Correct == nil {
		return fmt.Errorf("correct answer is required")
	}

	switch q.Kind {
	case models.KindMultipleChoice, models.KindScenario:
		return v.validateChoice(q)
	case models.KindMatching:
		return v.validateMatching(q)
	case models.KindDragDrop:
		return v.validateOrdering(q)
	case models.KindInteractive:
		return v.validateInteractive(q)
	case models.KindSpotDifference:
		if len(q.Hotspots) == 0 {
			return fmt.Errorf("must have at least 1 hotspot")
		}
		return v.validateSelection(q, len(q.Hotspots))
	case models.KindURLAnalyzer:
		if len(q.URLs) == 0 {
			return fmt.Errorf("must have at least 1 url")
		}
		return v.validateSelection(q, len(q.URLs))
	case models.KindRedFlags:
		if len(q.Flags) == 0 {
			return fmt.Errorf("must have at least 1 flag")
		}
		if q.Email == nil {
			return fmt.Errorf("email content is required")
		}
		return v.validateSelection(q, len(q.Flags))
	default:
		return fmt.Errorf("unsupported quiz kind: %s", q.Kind)
	}
}

func (v *ContentValidator) validateChoice(q *models.Quiz) error {
	if len(q.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	answer, ok := q.Correct.(models.ChoiceAnswer)
	if !ok {
		return fmt.Errorf("correct answer must be an option index")
	}
	if int(answer) < 0 || int(answer) >= len(q.Options) {
		return fmt.Errorf("correct answer %d out of range", answer)
	}
	return nil
}

func (v *ContentValidator) validateMatching(q *models.Quiz) error {
	if len(q.Options) < 2 {
		return fmt.Errorf("must have at least 2 options")
	}
	if len(q.Matches) != len(q.Options) {
		return fmt.Errorf("must have one match per option")
	}
	answer, ok := q.Correct.(models.SequenceAnswer)
	if !ok {
		return fmt.Errorf("correct answer must be a sequence")
	}
	if len(answer) != len(q.Options) {
		return fmt.Errorf("correct answer must pair every option")
	}
	for _, idx := range answer {
		if idx < 0 || idx >= len(q.Matches) {
			return fmt.Errorf("match index %d out of range", idx)
		}
	}
	return nil
}

func (v *ContentValidator) validateOrdering(q *models.Quiz) error {
	if len(q.Options) < 2 {
		return fmt.Errorf("must have at least 2 items")
	}
	answer, ok := q.Correct.(models.SequenceAnswer)
	if !ok {
		return fmt.Errorf("correct answer must be a sequence")
	}
	if len(answer) != len(q.Options) {
		return fmt.Errorf("correct answer must order every item")
	}
	seen := make(map[int]bool, len(answer))
	for _, idx := range answer {
		if idx < 0 || idx >= len(q.Options) || seen[idx] {
			return fmt.Errorf("correct answer must be a permutation of item indices")
		}
		seen[idx] = true
	}
	return nil
}

func (v *ContentValidator) validateInteractive(q *models.Quiz) error {
	if q.Activity == "" {
		return fmt.Errorf("activity is required")
	}
	if _, ok := q.Correct.(models.PredicateAnswer); !ok {
		return fmt.Errorf("correct answer must be a boolean")
	}
	if q.Activity == models.ActivityPasswordBuilder && len(q.Requirements) == 0 {
		return fmt.Errorf("password builder must list requirements")
	}
	return nil
}

func (v *ContentValidator) validateSelection(q *models.Quiz, size int) error {
	answer, ok := q.Correct.(models.SelectionAnswer)
	if !ok {
		return fmt.Errorf("correct answer must be a selection")
	}
	if len(answer) == 0 {
		return fmt.Errorf("correct answer must select at least 1 item")
	}
	for _, idx := range answer {
		if idx < 0 || idx >= size {
			return fmt.Errorf("selection index %d out of range", idx)
		}
	}
	return nil
}
