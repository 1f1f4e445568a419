package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one rejected field of a request or content item
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
	Rule    string `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors is returned as the details of a 400 response
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	default:
		return fmt.Sprintf("validation failed: %d field errors", len(ve))
	}
}

// Fields indexes the messages by field; the first message per field wins.
func (ve ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(ve))
	for _, e := range ve {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Message
		}
	}
	return out
}

func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// ToValidationErrors flattens go-playground field errors found anywhere in
// err's chain. Passwords never echo their value back.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return nil
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		e := ValidationError{
			Field:   fe.Field(),
			Message: ruleMessage(fe.Tag(), fe.Param()),
			Rule:    fe.Tag(),
		}
		if fe.Field() != "password" {
			e.Value = fe.Value()
		}
		out = append(out, e)
	}
	return out
}

var fixedMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"uuid":     "must be a valid UUID",
	"numeric":  "must be a number",
	"alphanum": "must contain only letters and numbers",
	"url":      "must be a valid URL",

	"quiz_kind":  "must be a valid quiz type (mcq, scenario, matching, drag_drop, interactive, spot_difference, url_analyzer, red_flags)",
	"difficulty": "must be Beginner, Intermediate, or Advanced",
}

var paramMessages = map[string]string{
	"min":     "must be at least %s",
	"max":     "must be at most %s",
	"len":     "must be exactly %s characters",
	"gt":      "must be greater than %s",
	"gte":     "must be %s or more",
	"lte":     "must be %s or less",
	"oneof":   "must be one of: %s",
	"eqfield": "must match %s",
}

func ruleMessage(tag, param string) string {
	if msg, ok := fixedMessages[tag]; ok {
		return msg
	}
	if format, ok := paramMessages[tag]; ok {
		return fmt.Sprintf(format, param)
	}
	return fmt.Sprintf("validation failed for rule '%s'", tag)
}
