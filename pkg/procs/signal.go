package procs

import (
	"errors"
	"os"
	"syscall"

	"github.com/shirou/gopsutil/v3/process"
)

// SystemSignaller delivers termination signals through the host process
// table. A pid that is already gone, or that belongs to another user, is
// out of scope for cleanup rather than a failure.
type SystemSignaller struct{}

func (SystemSignaller) Terminate(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		// Already gone.
		return nil
	}
	return benign(p.Terminate())
}

func (SystemSignaller) Kill(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil
	}
	return benign(p.Kill())
}

// Alive reports whether pid refers to a running process. A permission
// error counts as alive: the process exists even though it is not ours.
func (SystemSignaller) Alive(pid int) bool {
	running, err := process.PidExists(int32(pid))
	return err == nil && running
}

// benign filters the signal outcomes that mean the target is already out
// of reach: exited before the signal landed, or owned by another user.
func benign(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, process.ErrorProcessNotRunning),
		errors.Is(err, os.ErrProcessDone),
		errors.Is(err, syscall.ESRCH),
		errors.Is(err, syscall.EPERM):
		return nil
	}
	return err
}
