package scout

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/ci-tools/docker-scout-action/artifacts"
	"github.com/ci-tools/docker-scout-action/internal/log"
	"github.com/ci-tools/docker-scout-action/internal/runtime"
	"github.com/ci-tools/docker-scout-action/internal/shell"
)

const (
	pluginDir       = "/home/runner/.docker/cli-plugins"
	scannerImage    = "docker.io/docker/scout-cli:1.2.3"
	containerID     = "f00dcafe"
	versionOutput   = "\n      docker scout\n\nversion: v1.2.3 (go1.22.2 - linux/amd64)\ngit commit: 0123abc\n"
	scoutVersionCmd = "docker scout version"
)

var _ = ginkgo.Describe("Scout pipeline", func() {
	var (
		runner   *fakeRunner
		reporter *fakeReporter
		fs       afero.Fs
		s        *Scout
		ctx      context.Context
		logbuf   *bytes.Buffer
	)

	ginkgo.BeforeEach(func() {
		runner = newFakeRunner()
		runner.on("docker create "+scannerImage, shell.Result{Stdout: containerID + "\n"})
		runner.on(scoutVersionCmd, shell.Result{Stdout: versionOutput})
		reporter = newFakeReporter()
		fs = afero.NewMemMapFs()
		s = New(runner, reporter, WithFs(fs), WithPluginDir(pluginDir))
		logbuf = &bytes.Buffer{}
		ctx = logr.NewContext(context.Background(), logr.New(log.NewBufferSink(logbuf)))
	})

	readResult := func(path string) string {
		contents, err := afero.ReadFile(fs, path)
		Expect(err).ToNot(HaveOccurred())
		return string(contents)
	}

	ginkgo.Context("pulling the scanner image", func() {
		ginkgo.It("should pull the docker hub reference for the version", func() {
			Expect(s.PullImage(ctx, "1.2.3")).To(Succeed())
			Expect(runner.commandLines()).To(Equal([]string{"docker pull " + scannerImage}))
			Expect(reporter.groups).To(Equal([]string{"Pull docker/scout-cli image"}))
		})

		ginkgo.It("should use the pull's stderr as the error", func() {
			runner.on("docker pull "+scannerImage, shell.Result{ExitCode: 1, Stderr: "Error response from daemon: manifest unknown\n"})
			err := s.PullImage(ctx, "1.2.3")
			Expect(err).To(MatchError("Error response from daemon: manifest unknown"))
		})

		ginkgo.It("should refuse a version that is not a valid tag", func() {
			Expect(s.PullImage(ctx, "1.2.3; rm -rf /")).ToNot(Succeed())
			Expect(runner.calls).To(BeEmpty())
		})
	})

	ginkgo.Context("installing the binary", func() {
		ginkgo.It("should copy the plugin and remove the container", func() {
			Expect(s.InstallBinary(ctx, "1.2.3")).To(Succeed())
			Expect(runner.commandLines()).To(Equal([]string{
				"docker create " + scannerImage,
				"docker cp " + containerID + ":/docker-scout " + pluginDir,
				"docker rm -v " + containerID,
			}))
			Expect(afero.DirExists(fs, pluginDir)).To(BeTrue())
		})

		ginkgo.It("should remove the container when the copy fails", func() {
			runner.on("docker cp "+containerID+":/docker-scout "+pluginDir, shell.Result{ExitCode: 1, Stderr: "no such file"})
			err := s.InstallBinary(ctx, "1.2.3")
			Expect(err).To(MatchError("no such file"))
			Expect(runner.commandLines()).To(ContainElement("docker rm -v " + containerID))
		})

		ginkgo.It("should remove the container when the plugin directory cannot be created", func() {
			s = New(runner, reporter, WithFs(afero.NewReadOnlyFs(fs)), WithPluginDir(pluginDir))
			err := s.InstallBinary(ctx, "1.2.3")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("could not create plugin directory"))
			Expect(runner.commandLines()).To(Equal([]string{
				"docker create " + scannerImage,
				"docker rm -v " + containerID,
			}))
		})

		ginkgo.It("should not try to remove anything when create fails", func() {
			runner.on("docker create "+scannerImage, shell.Result{ExitCode: 125, Stderr: "Unable to find image"})
			err := s.InstallBinary(ctx, "1.2.3")
			Expect(err).To(MatchError("Unable to find image"))
			Expect(runner.commandLines()).To(HaveLen(1))
		})

		ginkgo.It("should fail on a non-zero create even without stderr", func() {
			runner.on("docker create "+scannerImage, shell.Result{ExitCode: 1, Stdout: containerID})
			err := s.InstallBinary(ctx, "1.2.3")
			Expect(shell.IsProcessError(err)).To(BeTrue())
			Expect(runner.commandLines()).To(HaveLen(1))
		})

		ginkgo.It("should fail when no container id is printed", func() {
			runner.on("docker create "+scannerImage, shell.Result{Stdout: "  \n"})
			Expect(s.InstallBinary(ctx, "1.2.3")).To(MatchError(ErrNoContainerID))
		})

		ginkgo.It("should report a failed removal when nothing else failed", func() {
			runner.on("docker rm -v "+containerID, shell.Result{ExitCode: 1, Stderr: "container is busy"})
			err := s.InstallBinary(ctx, "1.2.3")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("could not remove container " + containerID))
		})

		ginkgo.It("should keep the copy error when the removal fails too", func() {
			runner.on("docker cp "+containerID+":/docker-scout "+pluginDir, shell.Result{ExitCode: 1, Stderr: "no such file"})
			runner.on("docker rm -v "+containerID, shell.Result{ExitCode: 1, Stderr: "container is busy"})
			Expect(s.InstallBinary(ctx, "1.2.3")).To(MatchError("no such file"))
			Expect(logbuf.String()).To(ContainSubstring("unable to remove scanner container"))
		})

		ginkgo.It("should default to the docker CLI plugin directory", func() {
			s = New(runner, reporter)
			Expect(filepath.Base(s.PluginDir())).To(Equal("cli-plugins"))
		})
	})

	ginkgo.Context("probing the version", func() {
		ginkgo.It("should return and print the version", func() {
			version, err := s.ScoutVersion(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(version).To(Equal("v1.2.3"))
			Expect(reporter.infos).To(ContainElement("v1.2.3"))
			Expect(runner.calls[0].Silent).To(BeTrue())
		})

		ginkgo.It("should fail when the output carries no version", func() {
			runner.on(scoutVersionCmd, shell.Result{Stdout: "docker: 'scout' is not a docker command."})
			_, err := s.ScoutVersion(ctx)
			Expect(errors.Is(err, ErrVersionNotFound)).To(BeTrue())
		})

		ginkgo.It("should fail on a non-zero exit", func() {
			runner.on(scoutVersionCmd, shell.Result{ExitCode: 1})
			_, err := s.ScoutVersion(ctx)
			Expect(err).To(MatchError("docker scout version exited with code 1"))
		})
	})

	ginkgo.Context("running commands", func() {
		ginkgo.BeforeEach(func() {
			runner.on("docker scout cves app:latest --format json", shell.Result{Stdout: `{"cves":[]}` + "\n"})
			runner.on("docker scout recommendations app:latest --format json", shell.Result{Stdout: `{"recommendations":[]}` + "\n"})
		})

		ginkgo.When("writing to a file", func() {
			ginkgo.It("should concatenate the output of each command in order", func() {
				path, err := s.RunCommands(ctx, []string{"cves", "recommendations"}, "app:latest", "json", true)
				Expect(err).ToNot(HaveOccurred())
				Expect(runner.commandLines()).To(Equal([]string{
					"docker scout cves app:latest --format json",
					"docker scout recommendations app:latest --format json",
				}))
				for _, c := range runner.calls {
					Expect(c.Silent).To(BeTrue())
				}
				Expect(readResult(path)).To(Equal("{\"cves\":[]}\n{\"recommendations\":[]}\n"))
				Expect(reporter.outputs).To(HaveKeyWithValue(ResultFileOutput, path))
			})

			ginkgo.It("should fail when a command writes to stderr", func() {
				runner.on("docker scout cves app:latest --format json", shell.Result{Stdout: "partial", Stderr: "rate limited"})
				path, err := s.RunCommands(ctx, []string{"cves", "recommendations"}, "app:latest", "json", true)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("rate limited"))
				Expect(readResult(path)).To(BeEmpty())
				Expect(runner.calls).To(HaveLen(1))
			})
		})

		ginkgo.When("writing to the console", func() {
			ginkgo.It("should stream every command and leave the result file empty", func() {
				path, err := s.RunCommands(ctx, []string{"cves", "recommendations"}, "app:latest", "json", false)
				Expect(err).ToNot(HaveOccurred())
				Expect(runner.calls).To(HaveLen(2))
				for _, c := range runner.calls {
					Expect(c.Silent).To(BeFalse())
				}
				Expect(afero.Exists(fs, path)).To(BeTrue())
				Expect(readResult(path)).To(BeEmpty())
				Expect(reporter.outputs).To(HaveKeyWithValue(ResultFileOutput, path))
			})
		})

		ginkgo.It("should publish the result file before running anything", func() {
			rr := recordingRunner{fakeRunner: runner, reporter: reporter}
			s = New(rr, reporter, WithFs(fs))
			_, err := s.RunCommands(ctx, []string{"cves"}, "app:latest", "json", true)
			Expect(err).ToNot(HaveOccurred())
			Expect(reporter.events[0]).To(Equal("output " + ResultFileOutput))
		})

		ginkgo.It("should stop at the first failing command", func() {
			runner.on("docker scout compare app:latest --format json", shell.Result{ExitCode: 2, Stderr: "no base image"})
			for _, toFile := range []bool{true, false} {
				runner.calls = nil
				_, err := s.RunCommands(ctx, []string{"cves", "compare", "recommendations"}, "app:latest", "json", toFile)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("no base image"))
				Expect(runner.commandLines()).To(Equal([]string{
					"docker scout cves app:latest --format json",
					"docker scout compare app:latest --format json",
				}))
			}
		})

		ginkgo.It("should use a new result file on every run", func() {
			first, err := s.RunCommands(ctx, []string{"cves"}, "app:latest", "json", true)
			Expect(err).ToNot(HaveOccurred())
			second, err := s.RunCommands(ctx, []string{"cves"}, "app:latest", "json", true)
			Expect(err).ToNot(HaveOccurred())
			Expect(first).ToNot(Equal(second))
			Expect(filepath.Base(first)).To(Equal(artifacts.ResultFilename))
			Expect(readResult(first)).To(Equal(readResult(second)))
		})

		ginkgo.It("should write through the artifact writer from the context", func() {
			aw, err := artifacts.NewFilesystemWriter(artifacts.WithFs(fs), artifacts.WithDirectory("/work/out"))
			Expect(err).ToNot(HaveOccurred())
			path, err := s.RunCommands(artifacts.ContextWithWriter(ctx, aw), []string{"cves"}, "app:latest", "json", true)
			Expect(err).ToNot(HaveOccurred())
			Expect(path).To(Equal("/work/out/result.txt"))
		})

		ginkgo.It("should leave out an empty image and format", func() {
			_, err := s.RunCommands(ctx, []string{"quickview"}, "", "", false)
			Expect(err).ToNot(HaveOccurred())
			Expect(runner.commandLines()).To(Equal([]string{"docker scout quickview"}))
		})

		ginkgo.It("should surface a process that could not start", func() {
			runner.errs["docker scout cves app:latest --format json"] = errors.New("exec: \"docker\": executable file not found in $PATH")
			_, err := s.RunCommands(ctx, []string{"cves"}, "app:latest", "json", true)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("executable file not found"))
		})
	})

	ginkgo.Context("a full run", func() {
		var req *runtime.ScanRequest
		ginkgo.BeforeEach(func() {
			req = runtime.NewScanRequest("1.2.3", []string{"cves", "recommendations"}, "app:latest", "json", true)
			runner.on("docker scout cves app:latest --format json", shell.Result{Stdout: "cves\n"})
			runner.on("docker scout recommendations app:latest --format json", shell.Result{Stdout: "recommendations\n"})
		})

		ginkgo.It("should run every step in order", func() {
			res, err := s.Run(ctx, req)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.ScoutVersion).To(Equal("v1.2.3"))
			Expect(readResult(res.ResultFilePath)).To(Equal("cves\nrecommendations\n"))
			Expect(runner.commandLines()).To(Equal([]string{
				"docker pull " + scannerImage,
				"docker create " + scannerImage,
				"docker cp " + containerID + ":/docker-scout " + pluginDir,
				"docker rm -v " + containerID,
				"docker info",
				"docker scout version",
				"docker scout cves app:latest --format json",
				"docker scout recommendations app:latest --format json",
			}))
			Expect(reporter.groups).To(Equal([]string{
				"Pull docker/scout-cli image",
				"Copy binary",
				"Docker info",
				"Docker scout version",
			}))
		})

		ginkgo.It("should stop before running commands when no version is found", func() {
			runner.on(scoutVersionCmd, shell.Result{Stdout: "nothing useful"})
			_, err := s.Run(ctx, req)
			Expect(errors.Is(err, ErrVersionNotFound)).To(BeTrue())
			for _, line := range runner.commandLines() {
				Expect(line).ToNot(HavePrefix("docker scout cves"))
			}
			Expect(reporter.outputs).ToNot(HaveKey(ResultFileOutput))
		})

		ginkgo.It("should stop right after a failed pull", func() {
			runner.on("docker pull "+scannerImage, shell.Result{ExitCode: 1, Stderr: "denied"})
			_, err := s.Run(ctx, req)
			Expect(err).To(MatchError("denied"))
			Expect(runner.calls).To(HaveLen(1))
		})

		ginkgo.It("should note a version other than the pinned one", func() {
			runner.on(scoutVersionCmd, shell.Result{Stdout: "version: v1.3.0 (go1.22)"})
			_, err := s.Run(ctx, req)
			Expect(err).ToNot(HaveOccurred())
			Expect(logbuf.String()).To(ContainSubstring("differs from the requested one"))
		})

		ginkgo.It("should run nothing when no command is requested", func() {
			req = runtime.NewScanRequest("1.2.3", nil, "app:latest", "json", true)
			res, err := s.Run(ctx, req)
			Expect(err).ToNot(HaveOccurred())
			Expect(readResult(res.ResultFilePath)).To(BeEmpty())
			for _, line := range runner.commandLines() {
				Expect(strings.HasPrefix(line, "docker scout ") && line != scoutVersionCmd).To(BeFalse())
			}
		})
	})
})
