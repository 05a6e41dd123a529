//go:build !windows

package procs

// defaultCommandSet returns the Unix name-based sweep commands. Both pkill
// and killall are attempted: hosts commonly ship one but not the other, and
// a missing binary is swallowed like any other sweep failure.
func defaultCommandSet() commandSet {
	return commandSet{
		sweeps: [][]string{
			{"pkill", "-9", "-f", "chrome"},
			{"pkill", "-9", "-f", "chromium"},
			{"pkill", "-9", "-f", "chromedriver"},
			{"killall", "-9", "chrome"},
			{"killall", "-9", "chromium"},
			{"killall", "-9", "chromedriver"},
		},
	}
}
