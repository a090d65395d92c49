package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-study-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFlashcards struct {
	cards   []*models.Flashcard
	patches map[string]models.Patch
	err     error
}

func (f *fakeFlashcards) Read() []*models.Flashcard { return f.cards }

func (f *fakeFlashcards) Update(_ context.Context, id string, patch models.Patch) (*models.Flashcard, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.patches == nil {
		f.patches = make(map[string]models.Patch)
	}
	f.patches[id] = patch

	for _, c := range f.cards {
		if c.ID == id {
			next := *c
			if err := patch.ApplyTo(&next); err != nil {
				return nil, err
			}
			return &next, nil
		}
	}
	return nil, errors.New("not found")
}

func card(id string, due *time.Time) *models.Flashcard {
	return &models.Flashcard{Record: models.Record{ID: id}, Front: "f", Back: "b", DueAt: due}
}

func TestSM2Scheduler(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := SM2Scheduler{}

	tests := []struct {
		name         string
		card         models.Flashcard
		grade        int
		wantInterval int
		wantReps     int
		wantEase     float64
	}{
		{name: "first success", card: models.Flashcard{}, grade: 4, wantInterval: 1, wantReps: 1, wantEase: 2.5},
		{name: "second success", card: models.Flashcard{Repetitions: 1, Interval: 1, EaseFactor: 2.5}, grade: 5, wantInterval: 6, wantReps: 2, wantEase: 2.6},
		{name: "third success", card: models.Flashcard{Repetitions: 2, Interval: 6, EaseFactor: 2.5}, grade: 4, wantInterval: 15, wantReps: 3, wantEase: 2.5},
		{name: "lapse resets", card: models.Flashcard{Repetitions: 4, Interval: 30, EaseFactor: 2.5}, grade: 1, wantInterval: 1, wantReps: 0, wantEase: 1.96},
		{name: "ease floor", card: models.Flashcard{Repetitions: 2, Interval: 3, EaseFactor: 1.3}, grade: 0, wantInterval: 1, wantReps: 0, wantEase: 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patch := s.Schedule(tt.card, tt.grade, now)
			assert.Equal(t, tt.wantInterval, patch["interval"])
			assert.Equal(t, tt.wantReps, patch["repetitions"])
			assert.InDelta(t, tt.wantEase, patch["ease_factor"], 1e-9)
			assert.Equal(t, now.Add(time.Duration(tt.wantInterval)*24*time.Hour), patch["due_at"])
		})
	}
}

func TestReviewService_Due(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	earlier := now.Add(-72 * time.Hour)
	future := now.Add(time.Hour)

	store := &fakeFlashcards{cards: []*models.Flashcard{
		card("later", &future),
		card("past", &past),
		card("new", nil),
		card("earlier", &earlier),
		card("exact", &now),
	}}

	due := NewReviewService(store, nil).Due(now)

	ids := make([]string, 0, len(due))
	for _, c := range due {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"new", "earlier", "past", "exact"}, ids)
}

func TestReviewService_Grade(t *testing.T) {
	store := &fakeFlashcards{cards: []*models.Flashcard{card("c1", nil)}}
	svc := NewReviewService(store, nil).(*reviewService)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	updated, err := svc.Grade(context.Background(), "c1", 5)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 1, updated.Interval)
	assert.Equal(t, 1, updated.Repetitions)
	require.NotNil(t, updated.DueAt)
	assert.True(t, updated.DueAt.Equal(now.Add(24*time.Hour)))
	assert.Contains(t, store.patches, "c1")
}

func TestReviewService_Grade_Errors(t *testing.T) {
	store := &fakeFlashcards{cards: []*models.Flashcard{card("c1", nil)}}
	svc := NewReviewService(store, nil)
	ctx := context.Background()

	_, err := svc.Grade(ctx, "c1", 6)
	assert.ErrorIs(t, err, ErrInvalidGrade)

	_, err = svc.Grade(ctx, "c1", -1)
	assert.ErrorIs(t, err, ErrInvalidGrade)

	_, err = svc.Grade(ctx, "missing", 3)
	assert.ErrorIs(t, err, ErrFlashcardNotFound)

	store.err = errors.New("queue full")
	_, err = svc.Grade(ctx, "c1", 3)
	assert.ErrorIs(t, err, store.err)
}
