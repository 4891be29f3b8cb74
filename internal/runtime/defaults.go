package runtime

const (
	// DefaultScoutVersion is the scanner image tag pulled when none is given.
	DefaultScoutVersion = "latest"
	// DefaultFormat is the output format handed to every scout command.
	DefaultFormat = "packages"
	// DefaultCommand is run when no command is given.
	DefaultCommand = "quickview"
)
