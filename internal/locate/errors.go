package locate

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedPlatform is returned on any OS other than Windows and macOS.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrMissingOutput means a subprocess did not provide the piped output handle.
	ErrMissingOutput = errors.New("command did not provide an output stream")

	// ErrInvalidUTF8 means the captured process listing could not be decoded as text.
	ErrInvalidUTF8 = errors.New("command output is not valid UTF-8")

	// ErrInstallDirNotFound means no --install-directory argument was present in the
	// process listing, which usually means the client is not running.
	ErrInstallDirNotFound = errors.New("no installation directory found for the League client")
)

// CommandError is returned when an external command could not be started or
// exited abnormally.
type CommandError struct {
	Name string
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("running %s: %v", e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status of the command, or -1 if it never ran to
// completion.
func (e *CommandError) ExitCode() int {
	var coder interface{ ExitCode() int }
	if errors.As(e.Err, &coder) {
		return coder.ExitCode()
	}
	return -1
}
