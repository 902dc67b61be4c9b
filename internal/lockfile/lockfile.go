// Package lockfile reads the credential file the League client writes on
// every launch and turns it into a Descriptor for its local API.
//
// The file holds a single line of five colon separated fields:
//
//	<process>:<pid>:<port>:<password>:<protocol>
//	LeagueClientUx:1234:54835:C0DWT6VDJ2H50HFJ2BESh:https
package lockfile

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
)

const separator = ":"

// Field order within the lockfile.
var fields = [...]string{"process", "pid", "port", "password", "protocol"}

// Locator finds the installation directory that holds the lockfile.
type Locator interface {
	Locate(ctx context.Context) (string, error)
}

// Resolver locates the running client and parses its lockfile.
type Resolver struct {
	locator Locator
	logger  log.Logger
}

type Option func(*Resolver)

// WithLogger sets the logger used for debug output.
func WithLogger(logger log.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(locator Locator, opts ...Option) *Resolver {
	r := &Resolver{
		locator: locator,
		logger:  log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve locates the client, reads its lockfile and returns the parsed
// Descriptor. Errors from the Locator are returned unchanged.
func (r *Resolver) Resolve(ctx context.Context) (Descriptor, error) {
	dir, err := r.locator.Locate(ctx)
	if err != nil {
		return Descriptor{}, err
	}

	path, err := Path(dir)
	if err != nil {
		return Descriptor{}, err
	}

	level.Debug(r.logger).Log("msg", "reading lockfile", "path", path)
	return Read(path)
}

// Path joins dir with the lockfile name.
func Path(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.WithStack(ErrEmptyPath)
	}

	path := filepath.Join(dir, FileName)
	if !utf8.ValidString(path) {
		return "", errors.Wrapf(ErrEmptyPath, "%q is not representable as text", path)
	}
	return path, nil
}

// ReadDir parses the lockfile inside an already known installation directory.
func ReadDir(dir string) (Descriptor, error) {
	path, err := Path(dir)
	if err != nil {
		return Descriptor{}, err
	}
	return Read(path)
}

// Read parses the lockfile at path.
func Read(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, &ReadError{Path: path, Err: err}
	}

	if !utf8.Valid(data) {
		return Descriptor{}, &ReadError{Path: path, Err: ErrInvalidContent}
	}

	return Parse(string(data))
}

// Parse turns lockfile contents into a Descriptor. Surrounding whitespace is
// ignored. Fields beyond the fifth are ignored, since the client neither
// quotes nor escapes its fields.
func Parse(contents string) (Descriptor, error) {
	pieces := strings.Split(strings.TrimSpace(contents), separator)
	if len(pieces) < len(fields) {
		return Descriptor{}, &ParseError{Field: fields[len(pieces)], Err: ErrTooFewFields}
	}

	pid, err := strconv.ParseUint(pieces[1], 10, 32)
	if err != nil {
		return Descriptor{}, &ParseError{Field: fields[1], Value: pieces[1], Err: err}
	}

	port, err := strconv.ParseUint(pieces[2], 10, 16)
	if err != nil {
		return Descriptor{}, &ParseError{Field: fields[2], Value: pieces[2], Err: err}
	}
	if port == 0 {
		return Descriptor{}, &ParseError{Field: fields[2], Value: pieces[2], Err: ErrZeroPort}
	}

	password := pieces[3]

	return Descriptor{
		Process:  pieces[0],
		PID:      uint32(pid),
		Port:     uint32(port),
		Password: password,
		Protocol: pieces[4],
		Username: Username,
		Address:  Address,
		Auth:     basicAuth(Username, password),
	}, nil
}

func basicAuth(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
