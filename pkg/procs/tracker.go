package procs

// Tracker owns the set of processes attributed to one browser session.
// Exactly one Tracker exists per active session; the session controller
// owns it exclusively. It is grown during startup as children appear, read
// during shutdown, and discarded with the session. While the session is
// live, Spawned is always a subset of a fresh family scan; after cleanup
// the goal state is an empty intersection with the live inventory,
// verified rather than assumed.
type Tracker struct {
	spawned Snapshot
	primary int
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{spawned: make(Snapshot)}
}

// Track records a single pid as belonging to the session.
func (t *Tracker) Track(pid int) {
	if pid > 0 {
		t.spawned[pid] = struct{}{}
	}
}

// TrackAll records every pid in the snapshot.
func (t *Tracker) TrackAll(s Snapshot) {
	for pid := range s {
		t.spawned[pid] = struct{}{}
	}
}

// SetPrimary marks the main driver/browser process. The pid is also
// tracked unconditionally: the spawn delta alone could miss it if a
// pre-existing instance was reused.
func (t *Tracker) SetPrimary(pid int) {
	if pid > 0 {
		t.primary = pid
		t.Track(pid)
	}
}

// Primary returns the main process id and whether one was identified.
func (t *Tracker) Primary() (int, bool) {
	return t.primary, t.primary > 0
}

// Spawned returns the tracked set. Callers must not mutate it.
func (t *Tracker) Spawned() Snapshot {
	return t.spawned
}

// Empty reports whether nothing is tracked.
func (t *Tracker) Empty() bool {
	return len(t.spawned) == 0
}

// Reset drops all tracked state. Called after cleanup so a second release
// is a no-op observation.
func (t *Tracker) Reset() {
	t.spawned = make(Snapshot)
	t.primary = 0
}

// LiveIn returns the tracked pids still present in the snapshot.
func (t *Tracker) LiveIn(live Snapshot) Snapshot {
	out := make(Snapshot)
	for pid := range t.spawned {
		if _, ok := live[pid]; ok {
			out[pid] = struct{}{}
		}
	}
	return out
}
