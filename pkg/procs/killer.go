package procs

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// commandSet holds the platform's name-based bulk-kill commands,
// selected once per OS family at construction rather than branched at
// each call site.
type commandSet struct {
	sweeps [][]string
}

// Timing constants for the escalation ladder. The per-pid grace gives a
// process a moment to honor the soft signal before liveness is checked;
// the inter-strategy pauses let the kernel reap before the next pass.
const (
	softGrace       = 100 * time.Millisecond
	strategyPause   = 1 * time.Second
	portSweepPause  = 500 * time.Millisecond
	sweepCmdTimeout = 2 * time.Second
)

// Report counts what each strategy actually did, for logging and tests.
type Report struct {
	// SoftSignals is the number of terminate signals sent.
	SoftSignals int

	// HardKills is the number of force kills sent to soft-signal survivors.
	HardKills int

	// SweepCommands is the number of OS bulk-kill commands invoked.
	SweepCommands int

	// PortKills is the number of processes killed via port discovery.
	PortKills int
}

// Killer applies increasingly forceful termination strategies to the
// tracked process set. Every strategy runs regardless of whether the prior
// one reported success: killing an already-dead pid is a no-op, not an
// error, so the ladder is idempotent by construction. Run never fails and
// never panics; it typically executes inside a deferred cleanup while the
// wrapped workflow is already unwinding an error.
type Killer struct {
	inv  *Inventory
	sig  Signaller
	cmds commandSet
	log  Logger

	// Hooks for tests; production values run real commands and real sleeps.
	execSweep    func(argv []string) error
	resolvePort  func(port int) []int
	sleep        func(d time.Duration)
}

// KillerOption overrides a Killer default, mainly so tests can intercept
// shell commands and pauses.
type KillerOption func(*Killer)

// WithSweepExec replaces the function running OS bulk-kill commands.
func WithSweepExec(fn func(argv []string) error) KillerOption {
	return func(k *Killer) { k.execSweep = fn }
}

// WithPortResolver replaces port-to-pid resolution.
func WithPortResolver(fn func(port int) []int) KillerOption {
	return func(k *Killer) { k.resolvePort = fn }
}

// WithPause replaces the inter-strategy pauses.
func WithPause(fn func(d time.Duration)) KillerOption {
	return func(k *Killer) { k.sleep = fn }
}

// NewKiller builds a Killer over the shared inventory and signaller.
// log may be nil.
func NewKiller(inv *Inventory, sig Signaller, log Logger, opts ...KillerOption) *Killer {
	k := &Killer{
		inv:         inv,
		sig:         sig,
		cmds:        defaultCommandSet(),
		log:         orNop(log),
		execSweep:   runSweepCommand,
		resolvePort: pidsOnPort,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Run walks the strategy ladder against the tracked roots and the
// last-observed port set. With nothing tracked and no ports it performs
// zero operations.
func (k *Killer) Run(tracked Snapshot, ports PortSet) Report {
	var rep Report
	if len(tracked) == 0 && len(ports) == 0 {
		return rep
	}

	survivors := k.softSignalTrees(tracked, &rep)
	k.hardKill(survivors, &rep)
	k.commandSweep(&rep)
	k.portSweep(ports, &rep)

	k.log.Infof("kill escalation done: %d soft, %d hard, %d sweeps, %d port kills",
		rep.SoftSignals, rep.HardKills, rep.SweepCommands, rep.PortKills)
	return rep
}

// softSignalTrees resolves the process tree of every tracked root and sends
// a terminate signal leaves-first, so a parent cannot respawn a watchdog
// child after the child dies. Returns the pids still alive afterward.
func (k *Killer) softSignalTrees(tracked Snapshot, rep *Report) []int {
	var signalled []int
	for root := range tracked {
		tree := k.inv.TreeOf(root)
		if len(tree) == 0 {
			// Root vanished before resolution; nothing to do for it.
			continue
		}
		for i := len(tree) - 1; i >= 0; i-- {
			pid := tree[i]
			if err := k.sig.Terminate(pid); err != nil {
				k.log.Debugf("terminate pid %d: %v", pid, err)
				continue
			}
			rep.SoftSignals++
			signalled = append(signalled, pid)
			k.sleep(softGrace)
		}
	}

	var survivors []int
	for _, pid := range signalled {
		if k.sig.Alive(pid) {
			survivors = append(survivors, pid)
		}
	}
	return survivors
}

// hardKill force-kills everything that survived the soft signal.
func (k *Killer) hardKill(survivors []int, rep *Report) {
	for _, pid := range survivors {
		if err := k.sig.Kill(pid); err != nil {
			k.log.Debugf("kill pid %d: %v", pid, err)
			continue
		}
		rep.HardKills++
	}
	if len(survivors) > 0 {
		k.log.Warnf("hard-killed %d soft-signal survivors", len(survivors))
		k.sleep(strategyPause)
	}
}

// commandSweep runs the OS bulk-kill commands. These cover processes the
// id-based tracking missed entirely, such as children reparented to init.
// Command-not-found, non-zero exit, and timeout are all swallowed.
func (k *Killer) commandSweep(rep *Report) {
	for _, argv := range k.cmds.sweeps {
		if err := k.execSweep(argv); err != nil {
			k.log.Debugf("sweep %q: %v", strings.Join(argv, " "), err)
		}
		rep.SweepCommands++
	}
	k.log.Infof("ran %d name-based sweep commands", rep.SweepCommands)
	k.sleep(strategyPause)
}

// portSweep resolves the owner of each observed port and kills it. This is
// the last discovery channel: a process identifiable only by its listening
// debug socket when every name and cmdline heuristic failed.
func (k *Killer) portSweep(ports PortSet, rep *Report) {
	for port := range ports {
		for _, pid := range k.resolvePort(port) {
			if err := k.sig.Kill(pid); err != nil {
				k.log.Debugf("port %d kill pid %d: %v", port, pid, err)
				continue
			}
			rep.PortKills++
			k.log.Infof("killed pid %d via port %d", pid, port)
		}
	}
	if len(ports) > 0 {
		k.sleep(portSweepPause)
	}
}

func runSweepCommand(argv []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sweepCmdTimeout)
	defer cancel()
	return exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
}
