package procextra

import (
	"os"
	"testing"

	ps "github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProc struct {
	pid  int
	name string
}

func (p fakeProc) Pid() int           { return p.pid }
func (p fakeProc) PPid() int          { return 1 }
func (p fakeProc) Executable() string { return p.name }

func TestFilterDisplayServers(t *testing.T) {
	procs := []ps.Process{
		fakeProc{pid: 10, name: `bash`},
		fakeProc{pid: 20, name: `Xorg`},
		nil,
		fakeProc{pid: 30, name: `sway`},
		fakeProc{pid: 40, name: `swayidle`},
	}
	assert.Equal(t, []Proc{{PID: 20, Name: `Xorg`}, {PID: 30, Name: `sway`}}, filterDisplayServers(procs))
}

func TestDeviceHolders(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), `card`)
	require.NoError(t, err)
	defer f.Close()

	holders, err := DeviceHolders(f.Name())
	if err != nil {
		t.Skip(err)
	}
	pid := os.Getpid()
	assert.Condition(t, func() bool {
		for _, h := range holders {
			if h.PID == pid {
				return true
			}
		}
		return false
	}, `own process holds %s`, f.Name())
}
