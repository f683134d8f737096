// Package render defines the contract between the flip loop and the code that
// produces pixel content, plus a registry of named renderer implementations.
package render

import (
	"image"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/iancoleman/strcase"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/errors"
)

// Renderer paints new content into a buffer.
//
// Paint must repopulate the whole visible region of buf before returning and
// must not keep a reference to buf afterwards: the swap chain may hand the
// same memory to the display right after the call.
type Renderer interface {
	Paint(buf *buffer.Buffer) error
}

// Func adapts a function to Renderer.
type Func func(buf *buffer.Buffer) error

func (f Func) Paint(buf *buffer.Buffer) error { return f(buf) }

// Options are passed to renderer factories. Unused fields are ignored.
type Options struct {
	Width, Height int

	// composite renderer
	Frames    io.ReaderAt
	FrameSize image.Point
	Resizer   Resizer

	Logger *slog.Logger
}

// Factory creates a renderer.
type Factory func(opts Options) (Renderer, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a renderer available by name. It is meant to be called from
// init functions and panics on duplicate names. Names are stored in kebab
// case, the form New looks them up by.
func Register(name string, f Factory) {
	name = strcase.ToKebab(name)
	registryMu.Lock()
	defer registryMu.Unlock()
	if f == nil {
		panic(`render: Register with nil factory for ` + name)
	}
	if _, dup := registry[name]; dup {
		panic(`render: Register called twice for ` + name)
	}
	registry[name] = f
}

// New creates the renderer registered as name. Names are compared in kebab
// case.
func New(name string, opts Options) (Renderer, error) {
	name = strcase.ToKebab(name)
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, errors.Kindf(errors.ErrConfig, `unknown renderer %q (registered: %v)`, name, Names())
	}
	r, err := f(opts)
	if err != nil {
		return nil, errors.Kind(errors.ErrRender, err)
	}
	return r, nil
}

// Names returns the registered renderer names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
