package format

import "github.com/charmbracelet/glamour"

// FormatMarkdown renders text for the terminal, wrapped at width when it is
// positive.
func FormatMarkdown(text string, width int) (string, error) {
	if width <= 0 {
		return glamour.Render(text, "dark")
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}
