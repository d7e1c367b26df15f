package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a prompt renderer that formats markdown with glamour,
// auto-detecting the terminal background.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
