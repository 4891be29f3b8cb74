package scout

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/ci-tools/docker-scout-action/artifacts"
	"github.com/ci-tools/docker-scout-action/internal/log"
	"github.com/ci-tools/docker-scout-action/internal/shell"
)

// RunCommands runs each scout command against image, in order, and returns
// the path of the result file. With writeToFile the commands' stdout is
// appended to that file; otherwise output goes to the console and the file
// stays empty. The first failing command stops the rest.
//
// The result file lives in a fresh temporary directory unless ctx carries
// an ArtifactWriter. Its path is published as the result-file output
// before any command runs.
func (s *Scout) RunCommands(ctx context.Context, commands []string, image, format string, writeToFile bool) (string, error) {
	logger := logr.FromContextOrDiscard(ctx)

	w := artifacts.WriterFromContext(ctx)
	if w == nil {
		fw, err := artifacts.NewFilesystemWriter(artifacts.WithFs(s.fs))
		if err != nil {
			return "", err
		}
		w = fw
	}

	resultPath, err := w.WriteFile(artifacts.ResultFilename, strings.NewReader(""))
	if err != nil {
		return "", err
	}
	if err := s.reporter.SetOutput(ResultFileOutput, resultPath); err != nil {
		return resultPath, err
	}
	logger.V(log.DBG).Info("result file created", "path", resultPath)

	for _, c := range commands {
		cmd := dockerCommand(writeToFile, scoutArgs(c, image, format)...)
		logger.Info("running docker scout command", "command", c, "image", image)

		if !writeToFile {
			if _, err := s.run(ctx, cmd); err != nil {
				return resultPath, fmt.Errorf("docker scout %s: %w", c, err)
			}
			continue
		}

		res, err := s.run(ctx, cmd)
		if err != nil {
			return resultPath, fmt.Errorf("docker scout %s: %w", c, err)
		}
		// Anything on stderr means the captured stdout cannot be trusted.
		if res.Stderr != "" {
			return resultPath, fmt.Errorf("docker scout %s: %w", c, &shell.ProcessError{
				Command:  cmd.String(),
				ExitCode: res.ExitCode,
				Stderr:   res.Stderr,
			})
		}

		if _, err := w.AppendFile(artifacts.ResultFilename, strings.NewReader(res.Stdout)); err != nil {
			return resultPath, err
		}
	}

	return resultPath, nil
}

// scoutArgs builds the arguments of one scout command. An empty image or
// format is left out so that scout applies its own default.
func scoutArgs(command, image, format string) []string {
	args := []string{"scout", command}
	if image != "" {
		args = append(args, image)
	}
	if format != "" {
		args = append(args, "--format", format)
	}
	return args
}
