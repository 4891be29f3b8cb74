// Package scout installs the docker scout CLI plugin from its image and runs
// scout commands against a target image, one external process at a time.
package scout

import (
	"context"
	"path/filepath"

	dockerconfig "github.com/docker/cli/cli/config"
	"github.com/spf13/afero"

	"github.com/ci-tools/docker-scout-action/internal/shell"
)

const (
	// ResultFileOutput is the step output naming the aggregated result file.
	ResultFileOutput = "result-file"

	dockerBinary = "docker"
	// pluginBinary is the path of the plugin inside the scanner image.
	pluginBinary = "/docker-scout"
)

// Reporter is the part of the CI runner the pipeline talks to.
type Reporter interface {
	Group(ctx context.Context, name string, fn func(ctx context.Context) error) error
	SetOutput(name, value string) error
	Info(msg string)
}

// Scout drives the docker CLI through a shell.Runner.
type Scout struct {
	runner    shell.Runner
	reporter  Reporter
	fs        afero.Fs
	pluginDir string
}

// Option configures a Scout.
type Option func(*Scout)

// WithFs sets the filesystem used for the plugin directory and the
// result file.
func WithFs(fs afero.Fs) Option {
	return func(s *Scout) {
		s.fs = fs
	}
}

// WithPluginDir installs the plugin into dir instead of the docker CLI
// plugin directory.
func WithPluginDir(dir string) Option {
	return func(s *Scout) {
		s.pluginDir = dir
	}
}

// New returns a Scout running processes with runner and reporting through
// reporter.
func New(runner shell.Runner, reporter Reporter, opts ...Option) *Scout {
	s := &Scout{
		runner:   runner,
		reporter: reporter,
		fs:       afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PluginDir is where the docker CLI discovers plugins: cli-plugins under the
// docker config directory, which honours DOCKER_CONFIG and defaults to
// ~/.docker.
func (s *Scout) PluginDir() string {
	if s.pluginDir != "" {
		return s.pluginDir
	}
	return filepath.Join(dockerconfig.Dir(), "cli-plugins")
}

// run executes cmd and turns a non-zero exit into an error.
func (s *Scout) run(ctx context.Context, cmd shell.Command) (*shell.Result, error) {
	res, err := s.runner.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if err := res.Err(cmd); err != nil {
		return res, err
	}
	return res, nil
}

func dockerCommand(silent bool, args ...string) shell.Command {
	return shell.Command{Name: dockerBinary, Args: args, Silent: silent}
}
