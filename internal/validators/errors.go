package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyTitle         = errors.New("title is required")
	ErrEmptyFront         = errors.New("front is required")
	ErrEmptyBack          = errors.New("back is required")
	ErrEmptyPrompt        = errors.New("prompt is required")
	ErrTooFewChoices      = errors.New("at least two choices are required")
	ErrEmptyChoice        = errors.New("choices cannot be empty")
	ErrInvalidAnswerIndex = errors.New("answer index is out of range")
	ErrInvalidInterval    = errors.New("interval cannot be negative")
	ErrInvalidRepetitions = errors.New("repetitions cannot be negative")
	ErrInvalidEaseFactor  = errors.New("ease factor is below the minimum")
	ErrTitleTooLong       = errors.New("title is too long")
)
