package runtime

// ScanRequest is what one run of the action was asked to do.
type ScanRequest struct {
	version     string
	commands    []string
	image       string
	format      string
	writeToFile bool
}

// NewScanRequest builds a ScanRequest directly, without going through
// configuration.
func NewScanRequest(version string, commands []string, image, format string, writeToFile bool) *ScanRequest {
	cfg := Config{
		ScoutVersion: version,
		Commands:     commands,
		Image:        image,
		Format:       format,
		WriteToFile:  writeToFile,
	}
	return cfg.ScanRequest()
}

// Version is the scanner image tag.
func (r *ScanRequest) Version() string {
	return r.version
}

// Commands returns a copy of the scout subcommands, in run order.
func (r *ScanRequest) Commands() []string {
	commands := make([]string, len(r.commands))
	copy(commands, r.commands)
	return commands
}

func (r *ScanRequest) Image() string {
	return r.image
}

func (r *ScanRequest) Format() string {
	return r.format
}

// WriteToFile reports whether command output goes to the result file
// instead of the console.
func (r *ScanRequest) WriteToFile() bool {
	return r.writeToFile
}
