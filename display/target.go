// Package display provides the output targets a swap chain presents to:
// a KMS connector/CRTC pair on a DRM device, and a simulated display for
// machines without one.
package display

import (
	"fmt"
	"time"

	"github.com/srlehn/drmswap/binding"
	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/flip"
	"github.com/srlehn/drmswap/internal/logx"
)

// Target is a display output.
type Target interface {
	binding.Registrar
	flip.Presenter

	// Mode is the resolution buffers must have.
	Mode() Mode
	// Configure synchronously scans out fb, replacing the configuration
	// found at open time.
	Configure(fb uint32) error
	// Restore reinstates the configuration found at open time.
	Restore() error
	Allocator() buffer.Allocator
	Close() error
}

// Mode is the resolved display mode of a target.
type Mode struct {
	Width, Height uint32
	Refresh       uint32 // Hz
	Name          string
}

func (m Mode) String() string {
	return fmt.Sprintf(`%dx%d@%d`, m.Width, m.Height, m.Refresh)
}

// FrameInterval is the duration of one refresh cycle.
func (m Mode) FrameInterval() time.Duration {
	if m.Refresh == 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(m.Refresh)
}

// Options for opening targets.
type Options struct {
	// Connector is a connector name like "HDMI-A-1" or id. Empty selects the
	// last connected connector.
	Connector string
	Mode      ModeSpec
	Logger    logx.LoggerProvider
}
