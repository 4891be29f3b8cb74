// Package version contains all identifiable versioning info for
// describing the scout-action project, and the lookup of newer docker
// scout releases.
package version

import (
	"context"
	"fmt"

	semver "github.com/Masterminds/semver/v3"
	"github.com/go-logr/logr"
	"github.com/google/go-github/v62/github"

	"github.com/ci-tools/docker-scout-action/internal/log"
)

var (
	projectName = "github.com/ci-tools/docker-scout-action"
	version     = "unknown"
	commit      = "unknown"
)

var Version = VersionContext{
	Name:    projectName,
	Version: version,
	Commit:  commit,
}

// ScoutRepository locates the docker scout CLI releases on GitHub.
var ScoutRepository = struct{ Owner, Repo string }{"docker", "scout-cli"}

type VersionClient interface {
	GetLatestRelease(ctx context.Context, owner string, repo string) (*github.RepositoryRelease, *github.Response, error)
}

type VersionContext struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

func (vc *VersionContext) String() string {
	return fmt.Sprintf("%s <commit: %s>", vc.Version, vc.Commit)
}

// NewerRelease returns the latest release of owner/repo when it is newer
// than current, or nil when current is up to date.
func NewerRelease(ctx context.Context, svc VersionClient, owner, repo, current string) (*github.RepositoryRelease, error) {
	logger := logr.FromContextOrDiscard(ctx)

	currentVersion, err := semver.NewVersion(current)
	if err != nil {
		return nil, fmt.Errorf("current version %q is not a semantic version: %w", current, err)
	}
	latestRelease, resp, err := svc.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		logger.V(log.DBG).Info("Github responded with", "rate limit", resp.Rate.String())
	}
	latestVersion, err := semver.NewVersion(latestRelease.GetTagName())
	if err != nil {
		return nil, fmt.Errorf("latest release %q is not a semantic version: %w", latestRelease.GetTagName(), err)
	}
	if latestVersion.GreaterThan(currentVersion) {
		return latestRelease, nil
	}
	return nil, nil
}
