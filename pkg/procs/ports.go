package procs

// PortSet is a set of local TCP ports observed at a point in time.
// It is a secondary discovery channel: a driver or browser process that the
// name and command-line heuristics miss can still be found through the
// debug port it listens on.
type PortSet map[int]struct{}

// The range automation tooling typically picks debug ports from. The
// well-known defaults (DevTools 9222, chromedriver 9515) fall inside it.
const (
	debugPortLow  = 9000
	debugPortHigh = 10000
)

// ObservePorts returns the candidate browser ports currently bound on the
// host: any listening port in the debug range. Enumeration failures yield
// an empty set.
func ObservePorts() PortSet {
	return candidatePorts(listeningPorts())
}

func candidatePorts(listening []int) PortSet {
	ports := make(PortSet)
	for _, p := range listening {
		if p >= debugPortLow && p <= debugPortHigh {
			ports[p] = struct{}{}
		}
	}
	return ports
}

// PortDelta returns the ports in after that were not bound in before.
func PortDelta(before, after PortSet) PortSet {
	out := make(PortSet)
	for p := range after {
		if _, ok := before[p]; !ok {
			out[p] = struct{}{}
		}
	}
	return out
}
