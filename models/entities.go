package models

import "time"

// Collection names used on the wire and as storage partition keys.
const (
	CollectionDecks      = "decks"
	CollectionFlashcards = "flashcards"
	CollectionNotes      = "notes"
	CollectionQuestions  = "questions"
)

// Collections lists every collection the server accepts.
var Collections = []string{
	CollectionDecks,
	CollectionFlashcards,
	CollectionNotes,
	CollectionQuestions,
}

// IsKnownCollection reports whether name is one of [Collections].
func IsKnownCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Deck groups flashcards under a title.
type Deck struct {
	Record
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Flashcard is a two-sided card with spaced-repetition review state.
type Flashcard struct {
	Record
	DeckID      string     `json:"deck_id,omitempty"`
	Front       string     `json:"front"`
	Back        string     `json:"back"`
	Interval    int        `json:"interval"`
	EaseFactor  float64    `json:"ease_factor"`
	Repetitions int        `json:"repetitions"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

// Note is a rich-text document. Content is stored as-is (markdown or HTML).
type Note struct {
	Record
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Question is a multiple-choice quiz item.
type Question struct {
	Record
	DeckID      string   `json:"deck_id,omitempty"`
	Prompt      string   `json:"prompt"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
}

// NewEntity returns a pointer to a zero entity of collection, or nil if the
// collection is unknown.
func NewEntity(collection string) any {
	switch collection {
	case CollectionDecks:
		return &Deck{}
	case CollectionFlashcards:
		return &Flashcard{}
	case CollectionNotes:
		return &Note{}
	case CollectionQuestions:
		return &Question{}
	default:
		return nil
	}
}
