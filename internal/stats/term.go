package stats

import (
	"io"
	"os"

	"golang.org/x/term"
)

const (
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	colorGreen          = "\x1b[32m"
	colorYellow         = "\x1b[33m"
)

// TerminalWidth returns the stdout width, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ShouldUseColor reports whether ANSI colors should be written to w.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func colorize(s, code string, useColor bool) string {
	if !useColor || code == "" {
		return s
	}
	return code + s + colorReset
}
