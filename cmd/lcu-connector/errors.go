package main

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/4throck/lcu-connector/internal/client"
	"github.com/4throck/lcu-connector/internal/instance"
	"github.com/4throck/lcu-connector/internal/locate"
	"github.com/4throck/lcu-connector/internal/lockfile"
	"github.com/pkg/errors"
)

// describeError turns a failure into a message for the person running the tool.
func describeError(err error) string {
	var (
		cmdErr    *locate.CommandError
		readErr   *lockfile.ReadError
		parseErr  *lockfile.ParseError
		statusErr *client.StatusError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out looking for the League client. Try a longer -timeout."
	case errors.Is(err, instance.ErrAlreadyRunning):
		return fmt.Sprintf("Already watching the League client (%v).", err)
	case errors.Is(err, locate.ErrUnsupportedPlatform):
		return "Automatic discovery only works on Windows and macOS. Pass -dir with the League installation directory."
	case errors.Is(err, locate.ErrInstallDirNotFound):
		return "The League client is not running."
	case errors.As(err, &cmdErr):
		return fmt.Sprintf("Could not list running processes: %s failed (%v).", cmdErr.Name, cmdErr.Err)
	case errors.Is(err, locate.ErrInvalidUTF8), errors.Is(err, locate.ErrMissingOutput):
		return fmt.Sprintf("Could not read the process list: %v.", err)
	case errors.Is(err, lockfile.ErrEmptyPath):
		return "The installation directory is empty or not valid text."
	case errors.As(err, &readErr):
		if errors.Is(readErr, fs.ErrNotExist) {
			return fmt.Sprintf("No lockfile at %s. The client may still be starting.", readErr.Path)
		}
		return fmt.Sprintf("Could not read %s: %v.", readErr.Path, readErr.Err)
	case errors.As(err, &parseErr):
		return fmt.Sprintf("The lockfile is malformed: %v.", parseErr)
	case errors.As(err, &statusErr):
		return fmt.Sprintf("The client refused the request (HTTP %d). The lockfile may be stale.", statusErr.Code)
	default:
		return err.Error()
	}
}

// retryable reports whether waiting for the client could fix err.
func retryable(err error) bool {
	return errors.Is(err, locate.ErrInstallDirNotFound) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, context.DeadlineExceeded)
}
