package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	semver "github.com/Masterminds/semver/v3"
	"github.com/go-logr/logr"
	"github.com/google/go-github/v62/github"
	"github.com/spf13/cobra"

	"github.com/ci-tools/docker-scout-action/internal/action"
	"github.com/ci-tools/docker-scout-action/internal/log"
	"github.com/ci-tools/docker-scout-action/internal/runtime"
	"github.com/ci-tools/docker-scout-action/internal/scout"
	"github.com/ci-tools/docker-scout-action/internal/shell"
	"github.com/ci-tools/docker-scout-action/internal/viper"
	"github.com/ci-tools/docker-scout-action/version"
)

// scanner is the part of scout.Scout the scan command needs.
type scanner interface {
	Run(ctx context.Context, req *runtime.ScanRequest) (*scout.ScanResult, error)
}

// scanDeps lets tests replace the process runner and the GitHub client.
type scanDeps struct {
	newScanner       func(reporter *action.Runner) scanner
	newVersionClient func(token string) version.VersionClient
}

func defaultScanDeps() scanDeps {
	return scanDeps{
		newScanner: func(reporter *action.Runner) scanner {
			return scout.New(shell.NewRunner(os.Stdout, os.Stderr), reporter)
		},
		newVersionClient: newGitHubVersionClient,
	}
}

func scanCmd(deps scanDeps) *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Install docker scout and run scout commands against an image",
		Long: `This command pulls the docker/scout-cli image, installs the docker scout plugin from it, ` +
			`and runs each requested scout command against the target image.`,
		Args: cobra.NoArgs,
		// this fmt.Sprintf is in place to keep spacing consistent with cobras two spaces that's used in: Usage, Flags, etc
		Example: fmt.Sprintf("  %s", "scout-action scan --command cves,recommendations --image app:latest --format json --output-file true"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return scanRunE(cmd, args, deps)
		},
	}

	flags := scanCmd.Flags()
	viper := viper.Instance()

	flags.String("command", runtime.DefaultCommand, "Comma separated docker scout commands to run, in order. (env: INPUT_COMMAND)")
	_ = viper.BindPFlag("command", flags.Lookup("command"))

	flags.String("version", runtime.DefaultScoutVersion, "Tag of the docker/scout-cli image to install. (env: INPUT_VERSION)")
	_ = viper.BindPFlag("version", flags.Lookup("version"))

	flags.String("format", runtime.DefaultFormat, "Output format passed to every docker scout command. (env: INPUT_FORMAT)")
	_ = viper.BindPFlag("format", flags.Lookup("format"))

	flags.String("image", "", "Image to scan. (env: INPUT_IMAGE)")
	_ = viper.BindPFlag("image", flags.Lookup("image"))

	flags.String("output-file", "false", "Set to true to collect command output in the result file instead of the console. (env: INPUT_OUTPUT-FILE)")
	_ = viper.BindPFlag("output-file", flags.Lookup("output-file"))

	flags.String("gh-auth-token", "", "A Github auth token can be specified to work around rate limits")
	_ = viper.BindPFlag("gh-auth-token", flags.Lookup("gh-auth-token"))

	return scanCmd
}

// scanRunE runs the whole pipeline. Any failure is reported once, as the
// step's failure annotation, and returned.
func scanRunE(cmd *cobra.Command, args []string, deps scanDeps) error {
	ctx := cmd.Context()
	logger, err := logr.FromContext(ctx)
	if err != nil {
		return fmt.Errorf("invalid logging configuration")
	}
	logger.Info("scout-action version", "version", version.Version.String())

	reporter := action.New(action.WithWriter(cmd.OutOrStdout()))
	cmd.SilenceUsage = true

	// Render the Viper configuration as a runtime.Config
	cfg, err := runtime.NewConfigFrom(*viper.Instance())
	if err != nil {
		err = fmt.Errorf("invalid configuration: %w", err)
		reporter.SetFailed(err.Error())
		return err
	}

	result, err := deps.newScanner(reporter).Run(ctx, cfg.ScanRequest())
	if err != nil {
		reporter.SetFailed(err.Error())
		logger.Error(err, "docker scout action failed")
		return err
	}

	logger.Info("docker scout action finished", "result-file", result.ResultFilePath, "scout-version", result.ScoutVersion)
	if releaseCheckApplies(cfg.ScoutVersion) {
		checkForNewerScoutRelease(ctx, deps.newVersionClient(cfg.GHAuthToken), result.ScoutVersion)
	}
	return nil
}

// checkForNewerScoutRelease logs when a newer docker scout than the
// installed one has been released. It never fails the run.
func checkForNewerScoutRelease(ctx context.Context, client version.VersionClient, installed string) {
	logger := logr.FromContextOrDiscard(ctx)

	latestRelease, err := version.NewerRelease(ctx, client, version.ScoutRepository.Owner, version.ScoutRepository.Repo, installed)
	if err != nil {
		logger.V(log.DBG).Info("Unable to determine if running the latest docker scout release", "reason", err.Error())
		return
	}
	if latestRelease != nil {
		logger.Info("Found newer docker scout release", "New version", latestRelease.GetTagName(), "available at", latestRelease.GetHTMLURL())
	}
}

// releaseCheckApplies reports whether the requested scanner tag tracks
// releases: latest or a semantic version. Other tags name builds that have
// no release to compare against.
func releaseCheckApplies(requested string) bool {
	if requested == runtime.DefaultScoutVersion {
		return true
	}
	_, err := semver.NewVersion(requested)
	return err == nil
}

// newGitHubVersionClient uses an authenticated client if a token is provided.
func newGitHubVersionClient(token string) version.VersionClient {
	client := github.NewClient(&http.Client{
		// Timeout in 1s in case Github is slow to respond
		Timeout: time.Second * 1,
	})
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client.Repositories
}
