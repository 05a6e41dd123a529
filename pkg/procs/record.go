// Package procs implements discovery, tracking, and escalating termination
// of the Chrome process family spawned by an automated browser session.
//
// Chrome runs as a family of cooperating processes (browser, renderers, GPU,
// utility helpers) plus the driver process controlling it. Closing the
// automation client does not reliably reap all of them, so this package
// snapshots the process table around session startup, attributes the delta
// to the session, and on shutdown walks graceful-to-forceful termination
// strategies until the family is gone or every strategy is exhausted.
package procs

// Record describes one OS process at the moment it was scanned.
// Records are fetched fresh on every scan and never cached: the process
// table changes underneath us and a stale record is worse than none.
type Record struct {
	// PID is the OS-assigned process id.
	PID int

	// PPID is the parent process id, 0 when unknown.
	PPID int

	// Name is the short process name (comm on Linux, image name on Windows).
	Name string

	// Exe is the executable path when readable, empty otherwise.
	Exe string

	// Cmdline is the full command line joined with single spaces.
	Cmdline string
}

// Lister enumerates the processes currently visible to the caller.
// Implementations skip processes that vanish mid-scan or whose metadata
// cannot be read; both are expected races, not failures.
type Lister interface {
	List() ([]Record, error)
}

// Signaller delivers termination signals to a single process by id.
// "Process not found" is a benign outcome for every method: the target
// dying before the signal lands is the goal, not an error.
type Signaller interface {
	// Terminate asks the process to exit (SIGTERM or platform equivalent).
	Terminate(pid int) error

	// Kill forces the process to exit (SIGKILL or platform equivalent).
	Kill(pid int) error

	// Alive reports whether the process still exists.
	Alive(pid int) bool
}

// Logger is the subset of the application logger the cleanup path uses.
// A nil Logger is accepted everywhere and silences output.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

func orNop(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}
