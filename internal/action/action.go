// Package action speaks the workflow-command protocol of the CI runner:
// collapsible log groups, step outputs and failure annotations.
package action

import (
	"context"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/sethvargo/go-githubactions"

	"github.com/ci-tools/docker-scout-action/internal/log"
)

// OutputFileEnv names the file step outputs are appended to.
const OutputFileEnv = "GITHUB_OUTPUT"

// Runner emits workflow commands for one step.
type Runner struct {
	out     io.Writer
	getenv  githubactions.GetenvFunc
	actions *githubactions.Action
}

// Option configures a Runner.
type Option func(*Runner)

// WithWriter sets where workflow commands are printed.
func WithWriter(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithOutputFile overrides the output file read from the environment.
// An empty path makes outputs fall back to the set-output command.
func WithOutputFile(path string) Option {
	return func(r *Runner) {
		env := r.getenv
		r.getenv = func(key string) string {
			if key == OutputFileEnv {
				return path
			}
			return env(key)
		}
	}
}

// New returns a Runner printing to stdout and appending outputs to the file
// named by GITHUB_OUTPUT, when set.
func New(opts ...Option) *Runner {
	r := &Runner{
		out:    os.Stdout,
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.actions = githubactions.New(
		githubactions.WithWriter(r.out),
		githubactions.WithGetenv(r.getenv),
	)
	return r
}

// Group wraps fn's console output in a collapsible section called name.
// The section is closed whatever fn returns.
func (r *Runner) Group(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	logr.FromContextOrDiscard(ctx).V(log.TRC).Info("entering group", "name", name)
	r.actions.Group(name)
	defer r.actions.EndGroup()

	return fn(ctx)
}

// SetOutput publishes a step output. When the output file cannot be
// written the set-output command is printed instead, so this never fails.
func (r *Runner) SetOutput(name, value string) error {
	r.actions.SetOutput(name, value)
	return nil
}

// SetFailed annotates the step with msg as its failure reason.
func (r *Runner) SetFailed(msg string) {
	r.actions.Errorf("%s", msg)
}

// Info prints msg as a plain log line.
func (r *Runner) Info(msg string) {
	r.actions.Infof("%s", msg)
}
