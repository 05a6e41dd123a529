//go:build windows

package procs

// defaultCommandSet returns the Windows name-based sweep commands.
// /F forces, /T walks the child tree.
func defaultCommandSet() commandSet {
	return commandSet{
		sweeps: [][]string{
			{"taskkill", "/F", "/IM", "chrome.exe", "/T"},
			{"taskkill", "/F", "/IM", "chromedriver.exe", "/T"},
			{"taskkill", "/F", "/IM", "chromium.exe", "/T"},
		},
	}
}
