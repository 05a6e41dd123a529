package procs

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Name and executable substrings that identify Chrome-family processes.
var nameMarkers = []string{
	"chrome",
	"chromium",
	"chromedriver",
	"headless_shell",
}

// Command-line flags that identify Chrome-family processes even when the
// binary is named something unexpected (copied driver binaries, wrappers).
var cmdlineMarkers = []string{
	"--type=",
	"--user-data-dir=",
	"--remote-debugging-port=",
	"--remote-debugging-pipe",
	"--test-type",
	"--headless",
	"--no-sandbox",
}

// Predicate classifies a Record as part of the browser family.
//
// It is the single source of truth for "is this Chrome": the spawn tracker,
// the tree resolver, and the cleanup verifier all consume the same Predicate
// value. A false negative here leaks an orphan; a false positive kills an
// unrelated process, so extras should be added with care.
type Predicate struct {
	extras []glob.Glob
}

// NewPredicate builds a Predicate with the built-in Chrome markers plus
// optional glob patterns matched against the process name and executable
// path (for renamed or distro-specific browser binaries).
func NewPredicate(extraPatterns ...string) (Predicate, error) {
	p := Predicate{}
	for _, pat := range extraPatterns {
		g, err := glob.Compile(pat)
		if err != nil {
			return Predicate{}, fmt.Errorf("invalid process pattern %q: %w", pat, err)
		}
		p.extras = append(p.extras, g)
	}
	return p, nil
}

// Matches reports whether the record belongs to the browser family:
// true iff at least one name, executable, or command-line marker is present.
func (p Predicate) Matches(r Record) bool {
	name := strings.ToLower(r.Name)
	exe := strings.ToLower(r.Exe)
	cmdline := strings.ToLower(r.Cmdline)

	for _, m := range nameMarkers {
		if strings.Contains(name, m) || strings.Contains(exe, m) {
			return true
		}
	}
	for _, m := range cmdlineMarkers {
		if strings.Contains(cmdline, m) {
			return true
		}
	}
	for _, g := range p.extras {
		if g.Match(name) || g.Match(exe) {
			return true
		}
	}
	return false
}
