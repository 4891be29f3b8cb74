// Package cmd implements the command-line interface for scout-action.
package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	spfviper "github.com/spf13/viper"

	"github.com/ci-tools/docker-scout-action/internal/log"
	"github.com/ci-tools/docker-scout-action/internal/runtime"
	"github.com/ci-tools/docker-scout-action/internal/viper"
	"github.com/ci-tools/docker-scout-action/version"
)

var configFileUsed bool

func init() {
	cobra.OnInitialize(func() { initConfig(viper.Instance()) })
}

func rootCmd() *cobra.Command {
	return newRootCmd(defaultScanDeps())
}

func newRootCmd(deps scanDeps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:              "scout-action",
		Short:            "Install docker scout and scan an image with it.",
		Long:             "A CI step that installs the docker scout CLI plugin from its image and runs scout commands against a target image.",
		Version:          version.Version.String(),
		SilenceErrors:    true,
		PersistentPreRun: preRunConfig,
	}

	viper := viper.Instance()
	rootCmd.PersistentFlags().String("logfile", "", "Where the execution logfile will be written. (env: INPUT_LOGFILE)")
	_ = viper.BindPFlag("logfile", rootCmd.PersistentFlags().Lookup("logfile"))

	rootCmd.PersistentFlags().String("loglevel", "", "The verbosity of scout-action itself. Ex. warn, debug, trace, info, error. (env: INPUT_LOGLEVEL)")
	_ = viper.BindPFlag("loglevel", rootCmd.PersistentFlags().Lookup("loglevel"))

	rootCmd.AddCommand(scanCmd(deps))
	rootCmd.AddCommand(runtimeAssetsCmd())

	return rootCmd
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd().ExecuteContext(ctx)
}

func initConfig(viper *spfviper.Viper) {
	// set up ENV var support, matching how action inputs are exposed
	viper.SetEnvPrefix(InputEnvPrefix)
	viper.AutomaticEnv()

	// set up optional config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	configFileUsed = true
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(spfviper.ConfigFileNotFoundError); ok {
			configFileUsed = false
		}
	}

	// Set up logging config defaults
	viper.SetDefault("logfile", DefaultLogFile)
	viper.SetDefault("loglevel", DefaultLogLevel)

	// Set up scan defaults
	viper.SetDefault("command", runtime.DefaultCommand)
	viper.SetDefault("version", runtime.DefaultScoutVersion)
	viper.SetDefault("format", runtime.DefaultFormat)
	viper.SetDefault("output-file", "false")
}

// preRunConfig is used by cobra.PreRun in all non-root commands to load all necessary configurations
func preRunConfig(cmd *cobra.Command, args []string) {
	viper := viper.Instance()

	var out io.Writer = os.Stderr
	logname := viper.GetString("logfile")
	var logFileErr error
	if logname != "" {
		logFile, err := os.OpenFile(logname, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err == nil {
			out = io.MultiWriter(os.Stderr, logFile)
		}
		logFileErr = err
	}

	logger := log.New(out, viper.GetString("loglevel"))
	if logFileErr != nil {
		logger.Info("Failed to log to file, using default stderr", "logfile", logname)
	}
	if !configFileUsed {
		logger.V(log.DBG).Info("config file not found, proceeding without it")
	}

	ctx := logr.NewContext(cmd.Context(), logger)
	cmd.SetContext(ctx)
}
