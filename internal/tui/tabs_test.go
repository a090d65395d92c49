package tui

import (
	"testing"
	"time"

	"github.com/MKhiriev/go-study-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuestion(t *testing.T) {
	tests := []struct {
		name        string
		values      []string
		wantChoices []string
		wantAnswer  int
		wantErr     error
	}{
		{
			name:        "one based answer",
			values:      []string{"Capital of France?", "Berlin | Paris | Rome", "2"},
			wantChoices: []string{"Berlin", "Paris", "Rome"},
			wantAnswer:  1,
		},
		{
			name:        "blank choices are skipped",
			values:      []string{"Q", "a||b| ", ""},
			wantChoices: []string{"a", "b"},
			wantAnswer:  0,
		},
		{
			name:    "answer not a number",
			values:  []string{"Q", "a|b", "two"},
			wantErr: errAnswerNotANumber,
		},
		{
			name:       "missing fields",
			values:     []string{"Q"},
			wantAnswer: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := buildQuestion(tt.values)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantChoices, q.Choices)
			assert.Equal(t, tt.wantAnswer, q.AnswerIndex)
		})
	}
}

func TestBuildFlashcard_TrimsFields(t *testing.T) {
	f, err := buildFlashcard([]string{"  ", " front ", "back"})
	require.NoError(t, err)

	assert.Empty(t, f.DeckID)
	assert.Equal(t, "front", f.Front)
	assert.Equal(t, "back", f.Back)
}

func TestRows(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "new", flashcardRow(&models.Flashcard{Front: "x"}).detail)
	assert.Contains(t, flashcardRow(&models.Flashcard{Front: "x", DueAt: &due}).detail, "2026-03-0")
	assert.Equal(t, "first", noteRow(&models.Note{Title: "n", Content: "first\nsecond"}).detail)
	assert.Equal(t, "3 choices", questionRow(&models.Question{Choices: []string{"a", "b", "c"}}).detail)
}

func TestGradeFromKey(t *testing.T) {
	for k, want := range map[string]int{"0": 0, "3": 3, "5": 5} {
		g, ok := gradeFromKey(k)
		assert.True(t, ok, k)
		assert.Equal(t, want, g)
	}
	for _, k := range []string{"6", "9", "a", "10", ""} {
		_, ok := gradeFromKey(k)
		assert.False(t, ok, k)
	}
}
