package validators

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-study-sync/models"
)

// Field names match the JSON keys of the entities.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDeckID      = "deck_id"
	FieldFront       = "front"
	FieldBack        = "back"
	FieldInterval    = "interval"
	FieldEaseFactor  = "ease_factor"
	FieldRepetitions = "repetitions"
	FieldDueAt       = "due_at"
	FieldContent     = "content"
	FieldPrompt      = "prompt"
	FieldChoices     = "choices"
	FieldAnswerIndex = "answer_index"
)

const (
	// MinEaseFactor is the lowest SM-2 ease factor. Zero means "not reviewed yet".
	MinEaseFactor = 1.3

	maxTitleLength = 200
)

// EntityValidator validates decks, flashcards, notes and questions.
type EntityValidator struct {
}

func NewEntityValidator() Validator {
	return &EntityValidator{}
}

// Validate dispatches on the entity type. Without fields every field of the
// entity is checked.
func (v *EntityValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Deck:
		return v.validateDeck(value, fields...)
	case *models.Deck:
		return v.validateDeck(*value, fields...)

	case models.Flashcard:
		return v.validateFlashcard(value, fields...)
	case *models.Flashcard:
		return v.validateFlashcard(*value, fields...)

	case models.Note:
		return v.validateNote(value, fields...)
	case *models.Note:
		return v.validateNote(*value, fields...)

	case models.Question:
		return v.validateQuestion(value, fields...)
	case *models.Question:
		return v.validateQuestion(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if len([]rune(title)) > maxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}

func (v *EntityValidator) validateDeck(deck models.Deck, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTitle, FieldDescription}
	}

	for _, f := range fields {
		switch f {
		case FieldTitle:
			if err := validateTitle(deck.Title); err != nil {
				return err
			}
		case FieldDescription:
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *EntityValidator) validateFlashcard(card models.Flashcard, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldDeckID, FieldFront, FieldBack, FieldInterval, FieldEaseFactor, FieldRepetitions, FieldDueAt}
	}

	for _, f := range fields {
		switch f {
		case FieldFront:
			if strings.TrimSpace(card.Front) == "" {
				return ErrEmptyFront
			}
		case FieldBack:
			if strings.TrimSpace(card.Back) == "" {
				return ErrEmptyBack
			}
		case FieldInterval:
			if card.Interval < 0 {
				return ErrInvalidInterval
			}
		case FieldRepetitions:
			if card.Repetitions < 0 {
				return ErrInvalidRepetitions
			}
		case FieldEaseFactor:
			if card.EaseFactor != 0 && card.EaseFactor < MinEaseFactor {
				return ErrInvalidEaseFactor
			}
		case FieldDeckID, FieldDueAt:
		default:
			return ErrUnknownField
		}
	}

	return nil
}

func (v *EntityValidator) validateNote(note models.Note, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldTitle, FieldContent}
	}

	for _, f := range fields {
		switch f {
		case FieldTitle:
			if err := validateTitle(note.Title); err != nil {
				return err
			}
		case FieldContent:
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateQuestion checks answer_index against choices only when choices
// are present. A patch that changes just the index carries no choices.
func (v *EntityValidator) validateQuestion(q models.Question, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldDeckID, FieldPrompt, FieldChoices, FieldAnswerIndex}
	}

	for _, f := range fields {
		switch f {
		case FieldPrompt:
			if strings.TrimSpace(q.Prompt) == "" {
				return ErrEmptyPrompt
			}
		case FieldChoices:
			if len(q.Choices) < 2 {
				return ErrTooFewChoices
			}
			for _, c := range q.Choices {
				if strings.TrimSpace(c) == "" {
					return ErrEmptyChoice
				}
			}
		case FieldAnswerIndex:
			if q.AnswerIndex < 0 || (len(q.Choices) > 0 && q.AnswerIndex >= len(q.Choices)) {
				return ErrInvalidAnswerIndex
			}
		case FieldDeckID:
		default:
			return ErrUnknownField
		}
	}

	return nil
}
