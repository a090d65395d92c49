// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-study-sync/internal/service"
	"github.com/MKhiriev/go-study-sync/internal/syncengine"
	"github.com/MKhiriev/go-study-sync/internal/validators"
	"github.com/MKhiriev/go-study-sync/models"
)

// choiceSeparator splits the choices field of the question form.
const choiceSeparator = "|"

var errAnswerNotANumber = errors.New("answer must be the number of a choice")

type row struct {
	id     string
	title  string
	detail string

	// pending rows carry a temporary id: the server has not confirmed them
	pending bool
}

// tab is one collection as the UI sees it.
type tab interface {
	name() string
	rows() []row
	status() models.SyncStatus
	fields() []string
	create(ctx context.Context, values []string) error
	remove(ctx context.Context, id string) error
	changes() <-chan struct{}
}

type collectionTab[T syncengine.Entity] struct {
	title     string
	ctrl      *syncengine.Controller[T]
	form      []string
	render    func(T) row
	build     func(values []string) (T, error)
	validator validators.Validator
}

func (t *collectionTab[T]) name() string { return t.title }

func (t *collectionTab[T]) fields() []string { return t.form }

func (t *collectionTab[T]) status() models.SyncStatus { return t.ctrl.Status() }

func (t *collectionTab[T]) changes() <-chan struct{} { return t.ctrl.Changes() }

func (t *collectionTab[T]) rows() []row {
	items := t.ctrl.Read()
	out := make([]row, 0, len(items))
	for _, item := range items {
		r := t.render(item)
		r.id = item.GetRecord().ID
		r.pending = models.IsTempID(r.id)
		out = append(out, r)
	}
	return out
}

// create validates the draft locally before handing it to the controller, so
// obviously bad input never reaches the queue.
func (t *collectionTab[T]) create(ctx context.Context, values []string) error {
	draft, err := t.build(values)
	if err != nil {
		return err
	}
	if err = t.validator.Validate(ctx, draft); err != nil {
		return err
	}
	_, err = t.ctrl.Create(ctx, draft)
	return err
}

func (t *collectionTab[T]) remove(ctx context.Context, id string) error {
	_, err := t.ctrl.Remove(ctx, id)
	return err
}

func newTabs(s *service.ClientServices) []tab {
	v := validators.NewEntityValidator()
	return []tab{
		&collectionTab[*models.Deck]{
			title: "Decks", ctrl: s.Decks, validator: v,
			form: []string{"Title", "Description"}, render: deckRow, build: buildDeck,
		},
		&collectionTab[*models.Flashcard]{
			title: "Flashcards", ctrl: s.Flashcards, validator: v,
			form: []string{"Deck id (optional)", "Front", "Back"}, render: flashcardRow, build: buildFlashcard,
		},
		&collectionTab[*models.Note]{
			title: "Notes", ctrl: s.Notes, validator: v,
			form: []string{"Title", "Content"}, render: noteRow, build: buildNote,
		},
		&collectionTab[*models.Question]{
			title: "Questions", ctrl: s.Questions, validator: v,
			form: []string{"Prompt", "Choices (a | b | c)", "Correct choice number"}, render: questionRow, build: buildQuestion,
		},
	}
}

func deckRow(d *models.Deck) row {
	return row{title: d.Title, detail: d.Description}
}

func flashcardRow(f *models.Flashcard) row {
	detail := "new"
	if f.DueAt != nil {
		detail = "due " + f.DueAt.Local().Format("2006-01-02")
	}
	return row{title: f.Front, detail: detail}
}

func noteRow(n *models.Note) row {
	return row{title: n.Title, detail: firstLine(n.Content)}
}

func questionRow(q *models.Question) row {
	return row{title: q.Prompt, detail: fmt.Sprintf("%d choices", len(q.Choices))}
}

func buildDeck(values []string) (*models.Deck, error) {
	return &models.Deck{Title: value(values, 0), Description: value(values, 1)}, nil
}

func buildFlashcard(values []string) (*models.Flashcard, error) {
	return &models.Flashcard{
		DeckID: value(values, 0),
		Front:  value(values, 1),
		Back:   value(values, 2),
	}, nil
}

func buildNote(values []string) (*models.Note, error) {
	return &models.Note{Title: value(values, 0), Content: value(values, 1)}, nil
}

// buildQuestion takes the correct choice as a 1-based number.
func buildQuestion(values []string) (*models.Question, error) {
	var choices []string
	for _, c := range strings.Split(value(values, 1), choiceSeparator) {
		if c = strings.TrimSpace(c); c != "" {
			choices = append(choices, c)
		}
	}

	answer := 0
	if raw := value(values, 2); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errAnswerNotANumber, raw)
		}
		answer = n - 1
	}

	return &models.Question{Prompt: value(values, 0), Choices: choices, AnswerIndex: answer}, nil
}

func value(values []string, i int) string {
	if i >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[i])
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
