//go:build !windows

package procs

import (
	"bufio"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// listeningPorts reads /proc/net/tcp and tcp6 for sockets in LISTEN state.
// On systems without procfs it falls back to lsof.
func listeningPorts() []int {
	var ports []int
	found := false
	for _, path := range []string{"/proc/net/tcp", "/proc/net/tcp6"} {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		found = true

		scanner := bufio.NewScanner(f)
		scanner.Scan() // header
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) < 4 {
				continue
			}
			// 0A = LISTEN
			if fields[3] != "0A" {
				continue
			}
			parts := strings.Split(fields[1], ":")
			if len(parts) < 2 {
				continue
			}
			port, err := strconv.ParseInt(parts[len(parts)-1], 16, 32)
			if err != nil {
				continue
			}
			ports = append(ports, int(port))
		}
		f.Close()
	}
	if found {
		return ports
	}
	return listeningPortsLsof()
}

func listeningPortsLsof() []int {
	out, err := exec.Command("lsof", "-nP", "-iTCP", "-sTCP:LISTEN").Output()
	if err != nil {
		return nil
	}
	var ports []int
	for _, line := range strings.Split(string(out), "\n") {
		idx := strings.LastIndex(line, ":")
		if idx == -1 {
			continue
		}
		rest := line[idx+1:]
		if sp := strings.IndexByte(rest, ' '); sp != -1 {
			rest = rest[:sp]
		}
		if port, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil {
			ports = append(ports, port)
		}
	}
	return ports
}

// pidsOnPort resolves the processes listening on a TCP port via lsof.
// Any failure returns an empty slice; port discovery is best-effort.
func pidsOnPort(port int) []int {
	out, err := exec.Command("lsof", "-ti", "tcp:"+strconv.Itoa(port), "-sTCP:LISTEN").Output()
	if err != nil {
		return nil
	}
	var pids []int
	for _, line := range strings.Fields(string(out)) {
		if pid, err := strconv.Atoi(line); err == nil {
			pids = append(pids, pid)
		}
	}
	return pids
}
