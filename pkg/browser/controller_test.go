package browser

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visaslot/visaslot/pkg/procs"
)

// scriptedLister is a mutable process table shared by the fake client and
// signaller, so launching and quitting move pids in and out of view the way
// a real browser would.
type scriptedLister struct {
	mu      sync.Mutex
	records map[int]procs.Record
}

func newScriptedLister() *scriptedLister {
	return &scriptedLister{records: make(map[int]procs.Record)}
}

func (l *scriptedLister) List() ([]procs.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]procs.Record, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r)
	}
	return out, nil
}

func (l *scriptedLister) add(r procs.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[r.PID] = r
}

func (l *scriptedLister) remove(pids ...int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, pid := range pids {
		delete(l.records, pid)
	}
}

type tableSignaller struct {
	lister *scriptedLister
}

func (s tableSignaller) Terminate(pid int) error {
	s.lister.remove(pid)
	return nil
}

func (s tableSignaller) Kill(pid int) error {
	s.lister.remove(pid)
	return nil
}

func (s tableSignaller) Alive(pid int) bool {
	s.lister.mu.Lock()
	defer s.lister.mu.Unlock()
	_, ok := s.lister.records[pid]
	return ok
}

type fakeHandle struct {
	quit func() error
	pid  int
}

func (h *fakeHandle) Page() playwright.Page { return nil }
func (h *fakeHandle) Quit() error           { return h.quit() }
func (h *fakeHandle) PID() (int, bool)      { return h.pid, h.pid > 0 }

type fakeClient struct {
	launch func(opts LaunchOptions) (Handle, error)
}

func (c *fakeClient) Launch(opts LaunchOptions) (Handle, error) { return c.launch(opts) }

// newTestController wires a controller over the scripted table with fast
// timings. The fake client spawns a driver plus two children on launch;
// quitting removes them all, so the graceful path succeeds.
func newTestController(t *testing.T, lister *scriptedLister) *Controller {
	t.Helper()

	client := &fakeClient{
		launch: func(opts LaunchOptions) (Handle, error) {
			lister.add(procs.Record{PID: 10, PPID: 1, Name: "chromedriver", Cmdline: "chromedriver --port=9515"})
			lister.add(procs.Record{PID: 11, PPID: 10, Name: "chrome", Cmdline: "chrome --type=renderer"})
			lister.add(procs.Record{PID: 12, PPID: 10, Name: "chrome", Cmdline: "chrome --type=gpu-process"})
			return &fakeHandle{quit: func() error {
				lister.remove(10, 11, 12)
				return nil
			}}, nil
		},
	}

	pred, err := procs.NewPredicate()
	require.NoError(t, err)
	inv := procs.NewInventory(lister, pred)

	sig := tableSignaller{lister: lister}
	c := NewController(client, inv, sig, nil, Options{
		SettleDelay:     time.Millisecond,
		ShutdownTimeout: 500 * time.Millisecond,
		PollInterval:    10 * time.Millisecond,
	})
	c.sleep = func(time.Duration) {}

	// Keep escalation off the real host: no shell sweeps, no real pauses.
	c.killer = procs.NewKiller(inv, sig, nil,
		procs.WithPause(func(time.Duration) {}),
		procs.WithSweepExec(func([]string) error { return nil }),
		procs.WithPortResolver(func(int) []int { return nil }),
	)
	c.verifier = procs.NewVerifier(inv, sig, nil, procs.WithVerifyPause(func(time.Duration) {}))
	return c
}

func TestControllerCleanRun(t *testing.T) {
	lister := newScriptedLister()
	c := newTestController(t, lister)

	var sawHandle bool
	survivors, err := c.Run(context.Background(), func(h Handle) error {
		sawHandle = h != nil
		return nil
	})

	require.NoError(t, err)
	assert.True(t, sawHandle)
	assert.Equal(t, 0, survivors)

	records, _ := lister.List()
	assert.Empty(t, records, "no browser processes left behind")
}

func TestControllerRunTwiceBothClean(t *testing.T) {
	lister := newScriptedLister()
	c := newTestController(t, lister)

	for i := 0; i < 2; i++ {
		survivors, err := c.Run(context.Background(), func(Handle) error { return nil })
		require.NoError(t, err)
		assert.Equal(t, 0, survivors)
	}
}

func TestControllerWorkflowErrorPropagatesUnchanged(t *testing.T) {
	lister := newScriptedLister()
	c := newTestController(t, lister)

	sentinel := errors.New("calendar never appeared")
	survivors, err := c.Run(context.Background(), func(Handle) error { return sentinel })

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 0, survivors, "cleanup runs in full despite the workflow error")
}

func TestControllerCleansUpAfterWorkflowPanic(t *testing.T) {
	lister := newScriptedLister()
	c := newTestController(t, lister)

	assert.Panics(t, func() {
		_, _ = c.Run(context.Background(), func(Handle) error { panic("selector blew up") })
	})

	records, _ := lister.List()
	assert.Empty(t, records, "release ran despite the panic")
}

func TestControllerPartialAcquireFailureStillReleases(t *testing.T) {
	lister := newScriptedLister()
	c := newTestController(t, lister)
	launchErr := errors.New("driver refused to start")
	c.client = &fakeClient{
		launch: func(LaunchOptions) (Handle, error) {
			// A child escaped before the launch failed.
			lister.add(procs.Record{PID: 21, PPID: 1, Name: "chrome", Cmdline: "chrome --type=zygote"})
			return nil, launchErr
		},
	}

	survivors, err := c.Run(context.Background(), func(Handle) error {
		t.Fatal("workflow must not run after a failed acquire")
		return nil
	})

	assert.ErrorIs(t, err, launchErr)
	assert.Equal(t, 0, survivors, "verifier reaped the escaped child")
	records, _ := lister.List()
	assert.Empty(t, records)
}

func TestControllerEscalatesWhenQuitLeavesSurvivor(t *testing.T) {
	lister := newScriptedLister()
	c := newTestController(t, lister)
	c.client = &fakeClient{
		launch: func(LaunchOptions) (Handle, error) {
			lister.add(procs.Record{PID: 30, PPID: 1, Name: "chromedriver", Cmdline: "chromedriver --port=9515"})
			lister.add(procs.Record{PID: 31, PPID: 30, Name: "chrome", Cmdline: "chrome --type=renderer"})
			return &fakeHandle{quit: func() error {
				// The driver exits but the renderer hangs.
				lister.remove(30)
				return nil
			}}, nil
		},
	}

	survivors, err := c.Run(context.Background(), func(Handle) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, 0, survivors, "escalation reaped the hung renderer")
	records, _ := lister.List()
	assert.Empty(t, records)
}

func TestControllerCancelledContext(t *testing.T) {
	lister := newScriptedLister()
	c := newTestController(t, lister)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Run(ctx, func(Handle) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestControllerSerializesWorkflows(t *testing.T) {
	lister := newScriptedLister()
	c := newTestController(t, lister)

	var inFlight, maxInFlight int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Run(context.Background(), func(Handle) error {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					prev := atomic.LoadInt32(&maxInFlight)
					if n <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight), "overlapping invocations queue rather than interleave")
}
