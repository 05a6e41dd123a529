package procs

import "time"

const (
	verifyKillGrace = 500 * time.Millisecond
	cmdlinePreview  = 80
)

// Verifier performs the terminal cleanup check: rescan the inventory, give
// survivors exactly one more unconditional kill, and report whatever is
// left for operator diagnosis. It never escalates further and never fails;
// leaked processes are a warning, not an error.
type Verifier struct {
	inv   *Inventory
	sig   Signaller
	log   Logger
	sleep func(d time.Duration)
}

// VerifierOption overrides a Verifier default.
type VerifierOption func(*Verifier)

// WithVerifyPause replaces the post-kill grace pause.
func WithVerifyPause(fn func(d time.Duration)) VerifierOption {
	return func(vf *Verifier) { vf.sleep = fn }
}

// NewVerifier builds a Verifier over the shared inventory and signaller.
// log may be nil.
func NewVerifier(inv *Inventory, sig Signaller, log Logger, opts ...VerifierOption) *Verifier {
	vf := &Verifier{inv: inv, sig: sig, log: orNop(log), sleep: time.Sleep}
	for _, opt := range opts {
		opt(vf)
	}
	return vf
}

// Verify returns the number of family processes still alive after one
// final forced pass. Zero means the host is clean.
func (vf *Verifier) Verify() int {
	remaining := vf.inv.Family()
	if len(remaining) == 0 {
		return 0
	}

	for _, r := range remaining {
		if err := vf.sig.Kill(r.PID); err != nil {
			vf.log.Debugf("final kill pid %d: %v", r.PID, err)
		}
	}
	vf.sleep(verifyKillGrace)

	remaining = vf.inv.Family()
	if len(remaining) == 0 {
		return 0
	}

	vf.log.Warnf("%d browser processes survived cleanup", len(remaining))
	for _, r := range remaining {
		vf.log.Warnf("  survivor pid %d: %s %s", r.PID, r.Name, truncate(r.Cmdline, cmdlinePreview))
	}
	return len(remaining)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
