package scout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	semver "github.com/Masterminds/semver/v3"
	"github.com/go-logr/logr"
)

// ErrVersionNotFound is returned when the plugin did not report a version.
var ErrVersionNotFound = errors.New("failed to get docker scout version")

var versionPattern = regexp.MustCompile(`version:\s(\S+)`)

// ParseVersion extracts the first whitespace delimited token following
// "version:" in the output of docker scout version.
func ParseVersion(output string) (string, error) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(output))
	if m == nil {
		return "", fmt.Errorf("%w: no version found in docker scout output", ErrVersionNotFound)
	}
	return m[1], nil
}

// ScoutVersion asks the installed plugin for its version.
func (s *Scout) ScoutVersion(ctx context.Context) (string, error) {
	var version string
	err := s.reporter.Group(ctx, "Docker scout version", func(ctx context.Context) error {
		res, err := s.run(ctx, dockerCommand(true, "scout", "version"))
		if err != nil {
			return err
		}

		version, err = ParseVersion(res.Stdout)
		if err != nil {
			return err
		}

		s.reporter.Info(version)
		logr.FromContextOrDiscard(ctx).Info("docker scout installed", "version", version)
		return nil
	})
	if err != nil {
		return "", err
	}
	return version, nil
}

// versionMismatch reports whether a pinned semantic version was requested
// and something else got installed. Tags that are not versions, like
// latest, never mismatch.
func versionMismatch(requested, installed string) bool {
	want, err := semver.NewVersion(requested)
	if err != nil {
		return false
	}
	got, err := semver.NewVersion(installed)
	if err != nil {
		return true
	}
	return !want.Equal(got)
}
