package tui

func renderConfirmDelete(title string) string {
	content := "Delete \"" + fitText(title, 40) + "\"?\n\n"
	content += "y yes    n no"
	return appStyle.Render(overlayBoxStyle.Render(content))
}
