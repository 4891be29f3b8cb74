package scout

import (
	"context"

	"github.com/go-logr/logr"

	"github.com/ci-tools/docker-scout-action/internal/runtime"
)

// ScanResult is what a completed run produced.
type ScanResult struct {
	ResultFilePath string
	ScoutVersion   string
}

// Run installs docker scout and runs the requested commands. Steps run in a
// fixed order and the first error ends the run.
func (s *Scout) Run(ctx context.Context, req *runtime.ScanRequest) (*ScanResult, error) {
	logger := logr.FromContextOrDiscard(ctx)

	if err := s.PullImage(ctx, req.Version()); err != nil {
		return nil, err
	}
	if err := s.InstallBinary(ctx, req.Version()); err != nil {
		return nil, err
	}
	if err := s.EngineInfo(ctx); err != nil {
		return nil, err
	}

	version, err := s.ScoutVersion(ctx)
	if err != nil {
		return nil, err
	}
	if versionMismatch(req.Version(), version) {
		logger.Info("installed docker scout version differs from the requested one", "requested", req.Version(), "installed", version)
	}

	commands := req.Commands()
	if len(commands) == 0 {
		logger.Info("no docker scout command requested")
	}

	resultPath, err := s.RunCommands(ctx, commands, req.Image(), req.Format(), req.WriteToFile())
	if err != nil {
		return nil, err
	}

	return &ScanResult{
		ResultFilePath: resultPath,
		ScoutVersion:   version,
	}, nil
}
