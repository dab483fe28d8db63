package process

import (
	"io"
	"time"
)

// Command describes a subprocess to execute.
type Command struct {
	// Binary is the executable path or a name resolved via PATH.
	Binary string
	Args   []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env holds extra KEY=value pairs appended to os.Environ.
	Env   []string
	Stdin io.Reader
	// GracePeriod is the wait between SIGTERM and SIGKILL on cancellation.
	// Zero means DefaultGracePeriod.
	GracePeriod time.Duration
}

// DefaultGracePeriod is used when Command.GracePeriod is zero.
const DefaultGracePeriod = 5 * time.Second
