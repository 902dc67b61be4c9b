package ui

import (
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
)

// UI abstracts how results and failures reach the user.
// GuiUI shows native dialogs via zenity. CliUI writes to the terminal.
type UI interface {
	// Info shows an informational message.
	Info(title, message string)
	// Error shows an error message.
	Error(title, message string)
	// Entry prompts for text input. Returns the value and true, or "" and false if cancelled.
	Entry(title, text, defaultValue string) (string, bool)
	// Confirm asks a yes/no question. Returns true for yes.
	Confirm(title, message string) bool
}

// Select picks the UI for this process. Dialogs are used when forced, or
// when a Windows binary was started without a console (double-clicked).
func Select(forceGUI bool) UI {
	if forceGUI && IsGuiAvailable() {
		return NewGuiUI()
	}
	if runtime.GOOS == "windows" && !isTerminal(os.Stdout.Fd()) && IsGuiAvailable() {
		return NewGuiUI()
	}
	return NewCliUI()
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive reports whether a person is at the console: both stdin and
// stdout are terminals, so prompting will not stall a pipeline.
func IsInteractive() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}
