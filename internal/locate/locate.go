// Package locate finds the installation directory of the running League
// client by inspecting the process table.
package locate

import (
	"context"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
)

var installDirPattern = regexp.MustCompile(`--install-directory=([[:alnum:][:space:]:./\\]+)`)

// Locator discovers the client installation directory. The result is never
// cached: every call re-runs the platform commands.
type Locator struct {
	source Source
	logger log.Logger
}

type Option func(*Locator)

// WithLogger sets the logger used for debug output.
func WithLogger(logger log.Logger) Option {
	return func(l *Locator) {
		l.logger = logger
	}
}

// WithSource replaces the platform Source selected from runtime.GOOS.
func WithSource(source Source) Option {
	return func(l *Locator) {
		l.source = source
	}
}

// New returns a Locator for the host OS using os/exec.
func New(opts ...Option) *Locator {
	l := &Locator{
		source: SourceFor(runtime.GOOS, ExecRunner{}),
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate returns the absolute installation directory of the running client.
func (l *Locator) Locate(ctx context.Context) (string, error) {
	raw, err := l.source.RawProcessText(ctx)
	if err != nil {
		return "", err
	}

	dir, err := ExtractInstallDir(raw)
	if err != nil {
		level.Debug(l.logger).Log("msg", "install directory marker missing", "scanned_bytes", len(raw))
		return "", err
	}

	level.Debug(l.logger).Log("msg", "located install directory", "dir", dir)
	return dir, nil
}

// ExtractInstallDir pulls the --install-directory value out of a process
// listing, trimming surrounding whitespace.
func ExtractInstallDir(raw string) (string, error) {
	m := installDirPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", errors.WithStack(ErrInstallDirNotFound)
	}
	return strings.TrimSpace(m[1]), nil
}
