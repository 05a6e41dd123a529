package procs

import "github.com/shirou/gopsutil/v3/process"

// SystemLister enumerates the host process table. A process that vanishes
// between enumeration and the field reads is skipped; metadata that cannot
// be read (the exe and cmdline of processes owned by other users, usually)
// is left empty rather than failing the scan.
type SystemLister struct{}

func (SystemLister) List() ([]Record, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(procs))
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			// Died between enumeration and the read.
			continue
		}
		ppid, _ := p.Ppid()
		exe, _ := p.Exe()
		cmdline, _ := p.Cmdline()
		records = append(records, Record{
			PID:     int(p.Pid),
			PPID:    int(ppid),
			Name:    name,
			Exe:     exe,
			Cmdline: cmdline,
		})
	}
	return records, nil
}
