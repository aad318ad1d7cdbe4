package ui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// defaultWrap is used when the terminal width is unknown.
const defaultWrap = 100

// RenderMarkdown renders markdown for the terminal with glamour's standard
// dark or light style, matching the detected background.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = defaultWrap
	}

	style := "light"
	if IsDarkBackground() {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
