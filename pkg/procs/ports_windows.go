//go:build windows

package procs

import (
	"os/exec"
	"slices"
	"strconv"
	"strings"
)

// listeningPorts parses netstat -ano for listening TCP sockets.
func listeningPorts() []int {
	var ports []int
	for port := range netstatListeners() {
		ports = append(ports, port)
	}
	return ports
}

// pidsOnPort resolves the owning processes of a listening port via netstat.
func pidsOnPort(port int) []int {
	return netstatListeners()[port]
}

// netstatListeners maps listening local ports to their owning pids. A port
// bound on both the IPv4 and IPv6 stacks can have a distinct owner per
// stack, so the port maps to every owner seen.
func netstatListeners() map[int][]int {
	out, err := exec.Command("netstat", "-ano", "-p", "TCP").Output()
	if err != nil {
		return nil
	}
	return parseNetstat(string(out))
}

// parseNetstat reads netstat -ano output. Lines look like:
//
//	TCP    0.0.0.0:9222    0.0.0.0:0    LISTENING    4321
func parseNetstat(out string) map[int][]int {
	listeners := make(map[int][]int)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "TCP" || fields[3] != "LISTENING" {
			continue
		}
		idx := strings.LastIndex(fields[1], ":")
		if idx == -1 {
			continue
		}
		port, err := strconv.Atoi(fields[1][idx+1:])
		if err != nil {
			continue
		}
		pid, err := strconv.Atoi(fields[4])
		if err != nil {
			continue
		}
		if !slices.Contains(listeners[port], pid) {
			listeners[port] = append(listeners[port], pid)
		}
	}
	return listeners
}
