package runtime

import (
	"strings"

	"github.com/spf13/viper"

	scouterrors "github.com/ci-tools/docker-scout-action/errors"
)

// Config contains configuration details for one scout-action run.
type Config struct {
	Commands     []string
	ScoutVersion string
	Format       string
	Image        string
	WriteToFile  bool
	GHAuthToken  string
}

// NewConfigFrom will return a runtime.Config based on the stored inputs in
// the provided viper.Viper. Keys match the action's input names.
func NewConfigFrom(vcfg viper.Viper) (*Config, error) {
	cfg := Config{}
	cfg.GHAuthToken = vcfg.GetString("gh-auth-token")
	cfg.storeScanConfiguration(vcfg)

	if strings.TrimSpace(cfg.ScoutVersion) == "" {
		return nil, scouterrors.ErrScoutVersionEmpty
	}
	return &cfg, nil
}

// storeScanConfiguration reads the scan inputs in viper, normalizes them,
// and stores them in Config.
func (c *Config) storeScanConfiguration(vcfg viper.Viper) {
	c.Commands = ParseCommands(vcfg.GetString("command"))
	c.ScoutVersion = strings.TrimSpace(vcfg.GetString("version"))
	c.Format = strings.TrimSpace(vcfg.GetString("format"))
	c.Image = strings.TrimSpace(vcfg.GetString("image"))
	// Only the literal "true" enables file output.
	c.WriteToFile = vcfg.GetString("output-file") == "true"
}

// ParseCommands splits a comma separated list of scout commands, trimming
// each entry and dropping empty ones. Order is preserved.
func ParseCommands(input string) []string {
	commands := []string{}
	for _, cmd := range strings.Split(input, ",") {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		commands = append(commands, cmd)
	}
	return commands
}

// ScanRequest returns the scan portion of c as a value that cannot be
// changed afterwards.
func (c *Config) ScanRequest() *ScanRequest {
	commands := make([]string, len(c.Commands))
	copy(commands, c.Commands)
	return &ScanRequest{
		version:     c.ScoutVersion,
		commands:    commands,
		image:       c.Image,
		format:      c.Format,
		writeToFile: c.WriteToFile,
	}
}
