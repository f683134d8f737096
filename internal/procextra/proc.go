// Package procextra inspects other processes that compete for the display.
package procextra

import (
	"path/filepath"
	"slices"
	"strings"

	ps "github.com/mitchellh/go-ps"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/srlehn/drmswap/internal/errors"
)

// Proc identifies a process.
type Proc struct {
	PID  int
	Name string
}

// knownDisplayServers are executables that usually hold DRM master.
var knownDisplayServers = []string{
	`Xorg`, `Xwayland`, `X`,
	`gnome-shell`, `kwin_wayland`, `sway`, `weston`, `Hyprland`, `labwc`, `wayfire`, `river`, `cage`,
}

// DisplayServers lists running processes that are likely to hold DRM master.
func DisplayServers() ([]Proc, error) {
	procs, err := ps.Processes()
	if err != nil {
		return nil, errors.New(err)
	}
	return filterDisplayServers(procs), nil
}

func filterDisplayServers(procs []ps.Process) []Proc {
	var ret []Proc
	for _, p := range procs {
		if p == nil {
			continue
		}
		if slices.Contains(knownDisplayServers, p.Executable()) {
			ret = append(ret, Proc{PID: p.Pid(), Name: p.Executable()})
		}
	}
	return ret
}

// DeviceHolders lists processes with an open file descriptor for the device
// node at path. Processes whose descriptors can't be read are skipped.
func DeviceHolders(path string) ([]Proc, error) {
	want, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil, errors.New(err)
	}
	procs, err := process.Processes()
	if err != nil {
		return nil, errors.New(err)
	}
	var ret []Proc
	for _, p := range procs {
		files, err := p.OpenFiles()
		if err != nil {
			continue
		}
		if !slices.ContainsFunc(files, func(f process.OpenFilesStat) bool { return f.Path == want }) {
			continue
		}
		name, err := p.Name()
		if err != nil || len(name) == 0 {
			name = `?`
		}
		ret = append(ret, Proc{PID: int(p.Pid), Name: strings.TrimSpace(name)})
	}
	slices.SortFunc(ret, func(a, b Proc) int { return a.PID - b.PID })
	return ret, nil
}
