package report

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsColorEnabled returns true if color output should be enabled
func IsColorEnabled() bool {
	// Honor the NO_COLOR convention
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTTY(os.Stdout.Fd())
}
