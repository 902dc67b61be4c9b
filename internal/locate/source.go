package locate

import (
	"context"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// ProcessName is the League client UI process whose command line carries
	// the installation directory.
	ProcessName = "LeagueClientUx"

	grepNoMatch = 1
)

var (
	wmicCommand = Command{
		Name: "WMIC",
		Args: []string{"PROCESS", "WHERE", "name='" + ProcessName + ".exe'", "GET", "commandline"},
	}
	psCommand   = Command{Name: "ps", Args: []string{"x", "-o", "args"}}
	grepCommand = Command{Name: "grep", Args: []string{ProcessName}}
)

// Source produces the raw process listing that is scanned for the
// installation directory. There is one implementation per supported OS.
type Source interface {
	RawProcessText(ctx context.Context) (string, error)
}

// SourceFor selects the Source for goos. Operating systems other than
// windows and darwin get a Source that fails with ErrUnsupportedPlatform
// without spawning anything.
func SourceFor(goos string, runner CommandRunner) Source {
	switch goos {
	case "windows":
		return &WMICSource{runner: runner}
	case "darwin":
		return &PSGrepSource{runner: runner}
	default:
		return unsupportedSource(goos)
	}
}

// WMICSource asks WMI for the command line of every LeagueClientUx.exe.
type WMICSource struct {
	runner CommandRunner
}

func (s *WMICSource) RawProcessText(ctx context.Context) (string, error) {
	out, err := s.runner.Output(ctx, wmicCommand)
	if err != nil {
		return "", err
	}
	return decode(wmicCommand, out)
}

// PSGrepSource lists all processes of the current user with ps and filters
// the listing through grep.
type PSGrepSource struct {
	runner CommandRunner
}

func (s *PSGrepSource) RawProcessText(ctx context.Context) (string, error) {
	out, err := s.runner.Pipe(ctx, psCommand, grepCommand)
	if err != nil {
		// grep exits 1 when no line matched; that is an empty listing, not a failure.
		var cmdErr *CommandError
		if !errors.As(err, &cmdErr) || cmdErr.Name != grepCommand.Name || cmdErr.ExitCode() != grepNoMatch {
			return "", err
		}
	}
	return decode(grepCommand, out)
}

type unsupportedSource string

func (s unsupportedSource) RawProcessText(context.Context) (string, error) {
	return "", errors.Wrap(ErrUnsupportedPlatform, string(s))
}

func decode(c Command, out []byte) (string, error) {
	if !utf8.Valid(out) {
		return "", errors.Wrap(ErrInvalidUTF8, c.Name)
	}
	return string(out), nil
}
