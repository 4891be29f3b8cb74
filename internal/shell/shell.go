// Package shell runs external processes on behalf of the action. Callers
// get back what the process printed and how it exited; deciding whether
// that counts as a failure is left to them.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/go-logr/logr"

	"github.com/ci-tools/docker-scout-action/internal/log"
)

// Command describes one process invocation.
type Command struct {
	Name string
	Args []string
	// Silent captures output without echoing the invocation or streaming
	// stdout/stderr to the console.
	Silent bool
}

// String renders the invocation the way it is echoed to the console.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Result is what a finished process left behind.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Err returns a *ProcessError when the process exited non-zero.
func (r *Result) Err(cmd Command) error {
	if r.ExitCode == 0 {
		return nil
	}
	return &ProcessError{
		Command:  cmd.String(),
		ExitCode: r.ExitCode,
		Stderr:   r.Stderr,
	}
}

// ProcessError reports an external process that did not succeed.
type ProcessError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return msg
	}
	return fmt.Sprintf("%s exited with code %d", e.Command, e.ExitCode)
}

// IsProcessError reports whether err carries a *ProcessError.
func IsProcessError(err error) bool {
	var pe *ProcessError
	return errors.As(err, &pe)
}

// Runner executes a Command and waits for it to finish. The returned error
// is only set when the process could not be run at all; a non-zero exit is
// reported through Result.ExitCode.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// execContext has the signature of exec.CommandContext so tests can swap in
// their own process.
type execContext = func(ctx context.Context, name string, arg ...string) *exec.Cmd

// NewRunner returns a Runner backed by os/exec. Non-silent commands are
// echoed and streamed to the given writers; nil writers mean the process'
// own stdout and stderr.
func NewRunner(stdout, stderr io.Writer) Runner {
	return newRunner(exec.CommandContext, stdout, stderr)
}

func newRunner(cmdContext execContext, stdout, stderr io.Writer) *execRunner {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &execRunner{cmdContext: cmdContext, stdout: stdout, stderr: stderr}
}

type execRunner struct {
	cmdContext execContext
	stdout     io.Writer
	stderr     io.Writer
}

func (r *execRunner) Run(ctx context.Context, c Command) (*Result, error) {
	logger := logr.FromContextOrDiscard(ctx)

	cmd := r.cmdContext(ctx, c.Name, c.Args...)
	var stdout, stderr bytes.Buffer
	if c.Silent {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		fmt.Fprintf(r.stdout, "[command]%s\n", c)
		cmd.Stdout = io.MultiWriter(&stdout, r.stdout)
		cmd.Stderr = io.MultiWriter(&stderr, r.stderr)
	}

	logger.V(log.TRC).Info("running external command", "args", cmd.Args)
	err := cmd.Run()

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("unable to run %s: %w", c.Name, err)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	logger.V(log.DBG).Info("external command finished", "command", c.String(), "exitCode", res.ExitCode)
	return res, nil
}
