package procs

// Snapshot is the set of family process ids observed at one point in time.
type Snapshot map[int]struct{}

// Delta returns after − before: the ids present in after but not in before.
// These are the processes attributable to whatever happened between the two
// snapshots, typically one browser launch.
func Delta(before, after Snapshot) Snapshot {
	out := make(Snapshot)
	for pid := range after {
		if _, ok := before[pid]; !ok {
			out[pid] = struct{}{}
		}
	}
	return out
}

// Inventory is a read-only view of the OS process table filtered through
// the family Predicate. It holds no state between calls; every query scans
// fresh because the process table changes between scans.
type Inventory struct {
	lister Lister
	pred   Predicate
}

// NewInventory returns an Inventory scanning through the given Lister.
func NewInventory(lister Lister, pred Predicate) *Inventory {
	return &Inventory{lister: lister, pred: pred}
}

// Scan enumerates all currently visible processes. A failed enumeration
// yields an empty result: callers treat "nothing visible" and "nothing
// matched" the same way, and cleanup must never fail on a scan error.
func (v *Inventory) Scan() []Record {
	records, err := v.lister.List()
	if err != nil {
		return nil
	}
	return records
}

// Matches applies the family Predicate to a single record.
func (v *Inventory) Matches(r Record) bool {
	return v.pred.Matches(r)
}

// Snapshot captures the ids of all family processes currently alive.
func (v *Inventory) Snapshot() Snapshot {
	snap := make(Snapshot)
	for _, r := range v.Scan() {
		if v.pred.Matches(r) {
			snap[r.PID] = struct{}{}
		}
	}
	return snap
}

// Family returns the full records of all family processes currently alive.
func (v *Inventory) Family() []Record {
	var out []Record
	for _, r := range v.Scan() {
		if v.pred.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// TreeOf walks the process hierarchy rooted at root by transitive parent-id
// traversal and returns the root followed by all living descendants, each
// exactly once. Depth is unbounded. A process vanishing during traversal is
// simply omitted.
func (v *Inventory) TreeOf(root int) []int {
	children := make(map[int][]int)
	alive := make(map[int]bool)
	for _, r := range v.Scan() {
		alive[r.PID] = true
		if r.PPID > 0 {
			children[r.PPID] = append(children[r.PPID], r.PID)
		}
	}

	var tree []int
	seen := map[int]bool{}
	queue := []int{root}
	for len(queue) > 0 {
		pid := queue[0]
		queue = queue[1:]
		if seen[pid] {
			continue
		}
		seen[pid] = true
		if pid != root && !alive[pid] {
			continue
		}
		if pid == root && !alive[pid] {
			// Root already gone: nothing to resolve.
			return nil
		}
		tree = append(tree, pid)
		queue = append(queue, children[pid]...)
	}
	return tree
}
