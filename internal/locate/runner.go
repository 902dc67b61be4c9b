package locate

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Command names an external program and its arguments.
type Command struct {
	Name string
	Args []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// CommandRunner executes the read-only diagnostic commands used to inspect the
// process table. All subprocesses spawned by this package go through it so
// tests can substitute a fake.
type CommandRunner interface {
	// Output runs cmd and returns its standard output.
	Output(ctx context.Context, cmd Command) ([]byte, error)

	// Pipe runs from with its standard output connected to the standard input
	// of to, and returns the standard output of to.
	Pipe(ctx context.Context, from, to Command) ([]byte, error)
}

// ExecRunner is the CommandRunner backed by os/exec. Cancelling ctx kills any
// running subprocess.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	out, err := newCmd(ctx, c).Output()
	if err != nil {
		return nil, &CommandError{Name: c.Name, Err: err}
	}
	return out, nil
}

func (ExecRunner) Pipe(ctx context.Context, from, to Command) ([]byte, error) {
	producer := newCmd(ctx, from)
	stdout, err := producer.StdoutPipe()
	if err != nil {
		return nil, errors.Wrapf(ErrMissingOutput, "%s: %v", from.Name, err)
	}

	var out bytes.Buffer
	consumer := newCmd(ctx, to)
	consumer.Stdin = stdout
	consumer.Stdout = &out

	if err := producer.Start(); err != nil {
		return nil, &CommandError{Name: from.Name, Err: err}
	}

	if err := consumer.Start(); err != nil {
		_ = producer.Process.Kill()
		_ = producer.Wait()
		return nil, &CommandError{Name: to.Name, Err: err}
	}

	consumerErr := consumer.Wait()
	producerErr := producer.Wait()

	if consumerErr != nil {
		return out.Bytes(), &CommandError{Name: to.Name, Err: consumerErr}
	}
	if producerErr != nil {
		return nil, &CommandError{Name: from.Name, Err: producerErr}
	}

	return out.Bytes(), nil
}

func newCmd(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.SysProcAttr = sysProcAttr()
	return cmd
}
