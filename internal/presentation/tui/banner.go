package tui

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Interactive reports whether stdin is attached to a terminal. Piped input
// skips the banner and markdown rendering.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PrintBanner outputs the ASCII banner with a teal gradient.
func PrintBanner() {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                    _  __ _               ", "#2dd4bf"},
		{"   ___ __ _ _ __ __| |/ _| | _____      __", "#34d399"},
		{"  / __/ _` | '__/ _` | |_| |/ _ \\ \\ /\\ / /", "#4ade80"},
		{" | (_| (_| | | | (_| |  _| | (_) \\ V  V / ", "#a3e635"},
		{"  \\___\\__,_|_|  \\__,_|_| |_|\\___/ \\_/\\_/  ", "#facc15"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println()
}
