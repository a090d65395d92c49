package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-study-sync/internal/service"
	"github.com/MKhiriev/go-study-sync/models"
)

// reviewModel walks through the due flashcards one at a time.
type reviewModel struct {
	cards    []*models.Flashcard
	idx      int
	revealed bool
	grading  bool
	reviewed int
}

func (r reviewModel) current() (*models.Flashcard, bool) {
	if r.idx < 0 || r.idx >= len(r.cards) {
		return nil, false
	}
	return r.cards[r.idx], true
}

// next moves past the graded card. The list is not refetched, so a card
// graded as failed comes back only in the next session.
func (r reviewModel) next() reviewModel {
	r.idx++
	r.revealed = false
	r.grading = false
	r.reviewed++
	return r
}

// gradeFromKey maps "0".."5" to a grade.
func gradeFromKey(k string) (int, bool) {
	if len(k) != 1 || k[0] < '0' || k[0] > '9' {
		return 0, false
	}
	g := int(k[0] - '0')
	if g < service.MinGrade || g > service.MaxGrade {
		return 0, false
	}
	return g, true
}

func (r reviewModel) View(errMsg string) string {
	card, ok := r.current()
	if !ok {
		body := "Nothing is due."
		if r.reviewed > 0 {
			body = fmt.Sprintf("Done: %d card(s) reviewed.", r.reviewed)
		}
		return renderPage("REVIEW", body, "esc: back")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Card %d of %d\n\n", r.idx+1, len(r.cards))
	b.WriteString(titleStyle.Render(card.Front))
	b.WriteString("\n\n")
	if r.revealed {
		b.WriteString(card.Back)
	} else {
		b.WriteString(helpStyle.Render("(space to reveal)"))
	}
	if r.grading {
		b.WriteString("\n\nSaving...")
	}
	if errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(errMsg))
	}

	return renderPage("REVIEW", b.String(), "space: reveal  0-5: grade (0 forgot, 5 perfect)  esc: back")
}
