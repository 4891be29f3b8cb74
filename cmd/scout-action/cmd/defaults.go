package cmd

const (
	// DefaultLogFile is empty: logs only go to stderr unless asked otherwise.
	DefaultLogFile  = ""
	DefaultLogLevel = "info"
	// InputEnvPrefix is how the CI runner hands action inputs to the
	// process, e.g. INPUT_OUTPUT-FILE.
	InputEnvPrefix = "input"
)
