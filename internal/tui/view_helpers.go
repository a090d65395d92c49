package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-study-sync/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

func renderPage(title, data, hotKeys string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if strings.TrimSpace(data) != "" {
		b.WriteString(data)
		b.WriteString("\n")
	} else {
		b.WriteString("-\n")
	}

	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n")

	if strings.TrimSpace(hotKeys) != "" {
		b.WriteString(helpStyle.Render(hotKeys))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("ctrl+c: quit"))

	return appStyle.Render(b.String())
}

// renderStatusBar summarises connectivity and the active collection state.
func renderStatusBar(online bool, st models.SyncStatus) string {
	var b strings.Builder

	if online {
		b.WriteString(onlineStyle.Render("● online"))
	} else {
		b.WriteString(offlineStyle.Render("○ offline"))
	}

	b.WriteString("  ")
	b.WriteString(string(st.Phase))

	if st.PendingCount > 0 {
		b.WriteString("  pending: ")
		b.WriteString(strconv.Itoa(st.PendingCount))
	}

	b.WriteString("  last sync: ")
	if st.LastSyncAt == nil {
		b.WriteString("never")
	} else {
		b.WriteString(st.LastSyncAt.Local().Format(time.TimeOnly))
	}

	if st.Error != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fitText(st.Error, 70)))
	}

	return b.String()
}

func fitText(v string, max int) string {
	r := []rune(v)
	if max <= 0 || len(r) <= max {
		return v
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
