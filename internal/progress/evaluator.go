package progress

import (
	"strings"
	"unicode"

	"github.com/cyberguard/awareness-service/internal/models"
)

// Evaluate decides whether submitted matches correct for the given quiz kind.
// Mismatched answer types, nil answers and unknown kinds are incorrect.
func Evaluate(kind models.QuizKind, submitted, correct models.Answer) bool {
	switch kind {
	case models.KindMultipleChoice, models.KindScenario:
		got, ok := submitted.(models.ChoiceAnswer)
		want, wok := correct.(models.ChoiceAnswer)
		return ok && wok && got == want

	case models.KindMatching, models.KindDragDrop:
		got, ok := submitted.(models.SequenceAnswer)
		want, wok := correct.(models.SequenceAnswer)
		return ok && wok && sameSequence(got, want)

	case models.KindSpotDifference, models.KindURLAnalyzer, models.KindRedFlags:
		got, ok := submitted.(models.SelectionAnswer)
		want, wok := correct.(models.SelectionAnswer)
		return ok && wok && sameSelection(got, want)

	case models.KindInteractive:
		got, ok := submitted.(models.PredicateAnswer)
		if !ok {
			return false
		}
		// verdict is computed by the caller
		return bool(got)

	default:
		return false
	}
}

// EvaluateQuiz evaluates submitted against the quiz's expected answer.
func EvaluateQuiz(q *models.Quiz, submitted models.Answer) bool {
	if q == nil {
		return false
	}
	return Evaluate(q.Kind, submitted, q.Correct)
}

func sameSequence(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameSelection(a, b []int) bool {
	left := toSet(a)
	right := toSet(b)
	if len(left) != len(right) {
		return false
	}
	for v := range left {
		if _, ok := right[v]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

const (
	RequirementMinLength = "Minimum 12 characters"
	RequirementMixedCase = "Mix of uppercase and lowercase"
	RequirementNumbers   = "Numbers"
	RequirementSpecial   = "Special characters"
)

const specialCharacters = `!@#$%^&*(),.?":{}|<>`

// CheckPasswordRequirements reports whether password satisfies every
// requirement of a password_builder activity. Unknown requirements fail.
func CheckPasswordRequirements(password string, requirements []string) bool {
	for _, req := range requirements {
		if !meetsRequirement(password, req) {
			return false
		}
	}
	return true
}

func meetsRequirement(password, requirement string) bool {
	switch requirement {
	case RequirementMinLength:
		return len([]rune(password)) >= 12
	case RequirementMixedCase:
		return strings.IndexFunc(password, unicode.IsLower) >= 0 &&
			strings.IndexFunc(password, unicode.IsUpper) >= 0
	case RequirementNumbers:
		return strings.IndexFunc(password, unicode.IsDigit) >= 0
	case RequirementSpecial:
		return strings.ContainsAny(password, specialCharacters)
	default:
		return false
	}
}
