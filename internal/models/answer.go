package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyAnswer     = errors.New("answer is empty")
	ErrUnknownQuizKind = errors.New("unknown quiz kind")
)

// Answer is either a submitted response or the expected response of a quiz.
// The concrete type is determined by the quiz kind:
//
//	mcq, scenario                            ChoiceAnswer
//	matching, drag_drop                      SequenceAnswer
//	spot_difference, url_analyzer, red_flags SelectionAnswer
//	interactive                              PredicateAnswer
type Answer interface {
	isAnswer()
}

// ChoiceAnswer is the index of the selected option.
type ChoiceAnswer int

// SequenceAnswer is an ordered list of option indices. Position matters.
type SequenceAnswer []int

// SelectionAnswer is an unordered set of selected indices.
type SelectionAnswer []int

// PredicateAnswer carries a verdict computed by the caller, e.g. whether a
// typed password satisfies every stated requirement.
type PredicateAnswer bool

func (ChoiceAnswer) isAnswer()    {}
func (SequenceAnswer) isAnswer()  {}
func (SelectionAnswer) isAnswer() {}
func (PredicateAnswer) isAnswer() {}

// DecodeAnswer converts a raw JSON answer into the Answer type expected by kind.
func DecodeAnswer(kind QuizKind, raw json.RawMessage) (Answer, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyAnswer
	}

	switch kind {
	case KindMultipleChoice, KindScenario:
		var v int
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, fmt.Errorf("decode %s answer: %w", kind, err)
		}
		return ChoiceAnswer(v), nil
	case KindMatching, KindDragDrop:
		var v []int
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, fmt.Errorf("decode %s answer: %w", kind, err)
		}
		return SequenceAnswer(v), nil
	case KindSpotDifference, KindURLAnalyzer, KindRedFlags:
		var v []int
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, fmt.Errorf("decode %s answer: %w", kind, err)
		}
		return SelectionAnswer(v), nil
	case KindInteractive:
		var v bool
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return nil, fmt.Errorf("decode %s answer: %w", kind, err)
		}
		return PredicateAnswer(v), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuizKind, kind)
	}
}
