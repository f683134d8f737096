package quit

import (
	"os"

	"github.com/containerd/console"
	"golang.org/x/term"

	"github.com/srlehn/drmswap/internal/errors"
)

// Input is readable as soon as a key was pressed on the terminal.
type Input struct {
	console.Console
	fd int
}

var _ Source = (*Input)(nil)

// ErrNotTerminal is returned by NewInput for files that are no terminal.
var ErrNotTerminal = errors.New(`not a terminal`)

// NewInput puts the terminal f into raw mode so that single key presses
// become readable without waiting for a line end. Close restores the
// terminal.
func NewInput(f *os.File) (_ *Input, err error) {
	if f == nil {
		return nil, errors.NilParam()
	}
	if !term.IsTerminal(int(f.Fd())) {
		return nil, errors.WrapPrefix(ErrNotTerminal, f.Name(), 0)
	}
	defer func() {
		// some platforms panic in console.ConsoleFromFile
		if r := recover(); r != nil {
			err = errors.New(r)
		}
	}()
	c, err := console.ConsoleFromFile(f)
	if err != nil {
		return nil, errors.New(err)
	}
	if err := c.SetRaw(); err != nil {
		return nil, errors.New(err)
	}
	return &Input{Console: c, fd: int(c.Fd())}, nil
}

func (i *Input) Fd() int {
	if i == nil || i.Console == nil {
		return -1
	}
	return i.fd
}

// Close restores the terminal mode. The underlying file stays open.
func (i *Input) Close() error {
	if i == nil || i.Console == nil {
		return nil
	}
	defer func() { i.Console = nil }()
	if err := i.Console.Reset(); err != nil {
		return errors.New(err)
	}
	return nil
}
