package browser

import (
	"time"

	"github.com/visaslot/visaslot/pkg/procs"
)

// Shutdown is the graceful tier of session teardown. It invokes quit
// exactly once, swallowing any error it returns, then polls the inventory
// at the given interval until no tracked process remains alive or the
// timeout elapses. Returns true on a clean exit.
//
// This is the only step of cleanup that waits cooperatively; everything
// after it assumes graceful shutdown already failed.
func Shutdown(quit func() error, inv *procs.Inventory, tracker *procs.Tracker, timeout, interval time.Duration, log procs.Logger) bool {
	if quit != nil {
		if err := quit(); err != nil && log != nil {
			log.Warnf("browser quit failed: %v", err)
		}
	}

	deadline := time.Now().Add(timeout)
	for {
		if len(tracker.LiveIn(inv.Snapshot())) == 0 {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(interval)
	}
}
