package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/visaslot/visaslot/pkg/procs"
)

// Default teardown timings. The settle delay exists because Chrome spawns
// its helper children asynchronously after the launch call returns ready;
// snapshotting too early under-attributes the session.
const (
	DefaultSettleDelay     = 1 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultPollInterval    = 200 * time.Millisecond
)

// Options configures the Controller.
type Options struct {
	// Headless controls browser visibility. Defaults to headless.
	Headless bool

	// SettleDelay is how long to wait after launch before computing the
	// spawn delta.
	SettleDelay time.Duration

	// ShutdownTimeout bounds the graceful shutdown poll.
	ShutdownTimeout time.Duration

	// PollInterval is the graceful shutdown poll period.
	PollInterval time.Duration

	// ExtraArgs are extra Chromium launch arguments.
	ExtraArgs []string
}

func (o *Options) fill() {
	if o.SettleDelay == 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	if o.PollInterval == 0 {
		o.PollInterval = DefaultPollInterval
	}
}

// Controller scopes one browser session: it snapshots the process table
// around launch to attribute spawned processes to the session, hands the
// live handle to a workflow, and guarantees teardown on every exit path
// through the graceful-then-escalating cleanup ladder.
//
// At most one workflow holds the browser at a time. Overlapping scheduled
// invocations block on the controller's lock and queue rather than
// interleave.
type Controller struct {
	mu sync.Mutex

	client   Client
	inv      *procs.Inventory
	killer   *procs.Killer
	verifier *procs.Verifier
	log      procs.Logger
	opts     Options

	// Session state, owned for the lifetime of one Run call.
	tracker      *procs.Tracker
	handle       Handle
	profileDir   string
	sessionPorts procs.PortSet

	// Test hook; time.Sleep in production.
	sleep func(d time.Duration)
}

// NewController builds a Controller over the shared inventory, signaller,
// and automation client. log may be nil.
func NewController(client Client, inv *procs.Inventory, sig procs.Signaller, log Logger, opts Options) *Controller {
	opts.fill()
	return &Controller{
		client:   client,
		inv:      inv,
		killer:   procs.NewKiller(inv, sig, log),
		verifier: procs.NewVerifier(inv, sig, log),
		log:      logOrNop(log),
		opts:     opts,
		tracker:  procs.NewTracker(),
		sleep:    time.Sleep,
	}
}

// Logger mirrors procs.Logger so callers import one logging contract.
type Logger = procs.Logger

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

func logOrNop(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

// Run acquires a browser session, invokes the workflow with its handle,
// and releases the session on every exit path, including a workflow panic.
// The workflow's error propagates unchanged; cleanup conditions never
// convert into errors. The returned survivor count is the number of family
// processes still alive after all strategies; 0 means a clean host.
func (c *Controller) Run(ctx context.Context, workflow func(Handle) error) (survivors int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer func() {
		survivors = c.release()
	}()

	handle, err := c.acquire(ctx)
	if err != nil {
		// Partial acquire still releases: some children may have spawned
		// before the failure.
		return 0, err
	}
	return 0, workflow(handle)
}

// acquire snapshots the inventory, launches the browser, and attributes
// the spawn delta to this session.
func (c *Controller) acquire(ctx context.Context) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pidsBefore := c.inv.Snapshot()
	portsBefore := procs.ObservePorts()

	profileDir, err := os.MkdirTemp("", "visaslot-profile-")
	if err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}
	c.profileDir = profileDir

	handle, err := c.client.Launch(LaunchOptions{
		Headless:    c.opts.Headless,
		UserDataDir: profileDir,
		ExtraArgs:   c.opts.ExtraArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	c.handle = handle

	// Children appear asynchronously for several hundred milliseconds
	// after the client reports ready.
	c.sleep(c.opts.SettleDelay)

	c.tracker.TrackAll(procs.Delta(pidsBefore, c.inv.Snapshot()))
	c.sessionPorts = procs.PortDelta(portsBefore, procs.ObservePorts())

	if pid, ok := handle.PID(); ok {
		c.tracker.SetPrimary(pid)
	} else {
		c.identifyPrimary()
	}

	primary, _ := c.tracker.Primary()
	c.log.Infof("session acquired: %d tracked pids, %d tracked ports, primary pid %d",
		len(c.tracker.Spawned()), len(c.sessionPorts), primary)
	return handle, nil
}

// identifyPrimary looks for the driver process among the tracked pids by
// its command-line shape. Best-effort: the killer works from the whole
// tracked set either way.
func (c *Controller) identifyPrimary() {
	spawned := c.tracker.Spawned()
	for _, r := range c.inv.Family() {
		if _, ok := spawned[r.PID]; !ok {
			continue
		}
		cmdline := strings.ToLower(r.Cmdline)
		if strings.Contains(cmdline, "chromedriver") ||
			strings.Contains(cmdline, "--remote-debugging-pipe") ||
			strings.Contains(cmdline, "--remote-debugging-port=") {
			c.tracker.SetPrimary(r.PID)
			return
		}
	}
}

// release tears the session down: graceful shutdown, escalation only if
// processes remain, verification always, profile removal best-effort.
// It never returns an error and is safe to run twice and after a partial
// acquire; the second run is a no-op observation.
func (c *Controller) release() int {
	var quit func() error
	if c.handle != nil {
		quit = c.handle.Quit
	}

	clean := Shutdown(quit, c.inv, c.tracker, c.opts.ShutdownTimeout, c.opts.PollInterval, c.log)
	if clean {
		c.log.Infof("graceful shutdown complete")
	} else {
		// Timeout is the expected trigger for escalation, not an error.
		c.log.Warnf("graceful shutdown timed out, escalating")
		c.killer.Run(c.tracker.Spawned(), c.sessionPorts)
	}

	survivors := c.verifier.Verify()
	if survivors > 0 {
		c.log.Warnf("cleanup finished with %d survivors", survivors)
	}

	if c.profileDir != "" {
		// Absence and removal failure are both fine.
		_ = os.RemoveAll(c.profileDir)
	}

	c.handle = nil
	c.profileDir = ""
	c.sessionPorts = nil
	c.tracker.Reset()
	return survivors
}
