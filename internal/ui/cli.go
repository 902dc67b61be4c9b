package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CliUI uses stdin/stdout for interaction, the fallback for headless environments.
type CliUI struct {
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

// NewCliUI returns a new CLI-based UI.
func NewCliUI() *CliUI {
	return NewCliUIWith(os.Stdin, os.Stdout, os.Stderr)
}

// NewCliUIWith returns a CLI-based UI over the given streams.
func NewCliUIWith(in io.Reader, out, errOut io.Writer) *CliUI {
	return &CliUI{reader: bufio.NewReader(in), out: out, errOut: errOut}
}

func (c *CliUI) Info(title, message string) {
	fmt.Fprintf(c.out, "[%s] %s\n", title, message)
}

func (c *CliUI) Error(title, message string) {
	fmt.Fprintf(c.errOut, "[%s] %s\n", title, message)
}

func (c *CliUI) Entry(title, text, defaultValue string) (string, bool) {
	if defaultValue != "" {
		fmt.Fprintf(c.errOut, "%s [%s]: ", text, defaultValue)
	} else {
		fmt.Fprintf(c.errOut, "%s: ", text)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultValue, true
	}
	return line, true
}

func (c *CliUI) Confirm(title, message string) bool {
	fmt.Fprintf(c.errOut, "%s [Y/n]: ", message)
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "" || line == "y" || line == "yes"
}
