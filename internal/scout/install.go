package scout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/ci-tools/docker-scout-action/internal/log"
	"github.com/ci-tools/docker-scout-action/internal/runtime"
)

// ErrNoContainerID is returned when docker create printed no container id.
var ErrNoContainerID = errors.New("docker create did not return a container id")

// PullImage pulls the scanner image tagged version.
func (s *Scout) PullImage(ctx context.Context, version string) error {
	image, err := runtime.ScannerImage(version)
	if err != nil {
		return err
	}

	return s.reporter.Group(ctx, "Pull docker/scout-cli image", func(ctx context.Context) error {
		_, err := s.run(ctx, dockerCommand(false, "pull", image))
		return err
	})
}

// InstallBinary copies the scout plugin out of the scanner image into the
// plugin directory. The temporary container is removed on every path once
// it has been created.
func (s *Scout) InstallBinary(ctx context.Context, version string) error {
	image, err := runtime.ScannerImage(version)
	if err != nil {
		return err
	}

	return s.reporter.Group(ctx, "Copy binary", func(ctx context.Context) (err error) {
		logger := logr.FromContextOrDiscard(ctx)

		res, err := s.run(ctx, dockerCommand(false, "create", image))
		if err != nil {
			return err
		}
		containerID := strings.TrimSpace(res.Stdout)
		if containerID == "" {
			return ErrNoContainerID
		}
		logger.V(log.DBG).Info("created scanner container", "container", containerID)

		defer func() {
			// Removal must happen even when ctx is already cancelled.
			_, rmErr := s.run(context.WithoutCancel(ctx), dockerCommand(false, "rm", "-v", containerID))
			if rmErr == nil {
				return
			}
			logger.Error(rmErr, "unable to remove scanner container", "container", containerID)
			if err == nil {
				err = fmt.Errorf("could not remove container %s: %w", containerID, rmErr)
			}
		}()

		pluginDir := s.PluginDir()
		if err := s.fs.MkdirAll(pluginDir, 0o755); err != nil {
			return fmt.Errorf("could not create plugin directory %s: %w", pluginDir, err)
		}

		_, err = s.run(ctx, dockerCommand(false, "cp", containerID+":"+pluginBinary, pluginDir))
		return err
	})
}

// EngineInfo prints the container engine's view of the host.
func (s *Scout) EngineInfo(ctx context.Context) error {
	return s.reporter.Group(ctx, "Docker info", func(ctx context.Context) error {
		_, err := s.run(ctx, dockerCommand(false, "info"))
		return err
	})
}
