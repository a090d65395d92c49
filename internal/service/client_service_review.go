package service

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/MKhiriev/go-study-sync/internal/validators"
	"github.com/MKhiriev/go-study-sync/models"
)

const (
	MinGrade = 0
	MaxGrade = 5

	// passingGrade is the lowest grade that counts as a successful recall.
	passingGrade      = 3
	initialEaseFactor = 2.5
)

// SM2Scheduler implements the SuperMemo 2 algorithm.
type SM2Scheduler struct{}

func (SM2Scheduler) Schedule(card models.Flashcard, grade int, now time.Time) models.Patch {
	ease := card.EaseFactor
	if ease == 0 {
		ease = initialEaseFactor
	}

	reps, interval := card.Repetitions, card.Interval
	if grade < passingGrade {
		reps, interval = 0, 1
	} else {
		switch reps {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = int(math.Round(float64(interval) * ease))
		}
		reps++
	}

	miss := float64(MaxGrade - grade)
	ease = max(ease+0.1-miss*(0.08+miss*0.02), validators.MinEaseFactor)

	due := now.UTC().Add(time.Duration(interval) * 24 * time.Hour)
	return models.Patch{
		"interval":    interval,
		"repetitions": reps,
		"ease_factor": math.Round(ease*100) / 100,
		"due_at":      due,
	}
}

type reviewService struct {
	cards     FlashcardStore
	scheduler Scheduler
	now       func() time.Time
}

// NewReviewService returns a ReviewService over cards. A nil scheduler
// means SM2Scheduler.
func NewReviewService(cards FlashcardStore, scheduler Scheduler) ReviewService {
	if scheduler == nil {
		scheduler = SM2Scheduler{}
	}
	return &reviewService{cards: cards, scheduler: scheduler, now: time.Now}
}

func (r *reviewService) Due(now time.Time) []*models.Flashcard {
	var due []*models.Flashcard
	for _, card := range r.cards.Read() {
		if card.DueAt == nil || !card.DueAt.After(now) {
			due = append(due, card)
		}
	}

	slices.SortStableFunc(due, func(a, b *models.Flashcard) int {
		switch {
		case a.DueAt == nil && b.DueAt == nil:
			return 0
		case a.DueAt == nil:
			return -1
		case b.DueAt == nil:
			return 1
		default:
			return a.DueAt.Compare(*b.DueAt)
		}
	})
	return due
}

// Grade may return a nil card without error when the update was queued
// offline or rolled back by the controller.
func (r *reviewService) Grade(ctx context.Context, id string, grade int) (*models.Flashcard, error) {
	if grade < MinGrade || grade > MaxGrade {
		return nil, ErrInvalidGrade
	}

	cards := r.cards.Read()
	idx := slices.IndexFunc(cards, func(c *models.Flashcard) bool { return c.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrFlashcardNotFound, id)
	}
	card := cards[idx]

	patch := r.scheduler.Schedule(*card, grade, r.now())
	updated, err := r.cards.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("grade flashcard %s: %w", id, err)
	}
	return updated, nil
}
