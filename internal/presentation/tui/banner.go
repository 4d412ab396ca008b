package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for tessera.
func PrintBanner() {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _                              ", "#818cf8"},
		{" | |_ ___  ___ ___  ___ _ __ __ _ ", "#a78bfa"},
		{" | __/ _ \\/ __/ __|/ _ \\ '__/ _` |", "#c084fc"},
		{" | ||  __/\\__ \\__ \\  __/ | | (_| |", "#e879f9"},
		{"  \\__\\___||___/___/\\___|_|  \\__,_|", "#f472b6"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println()
}
