package kms

import (
	"bytes"
	"fmt"
)

// connection states
const (
	Connected         = 1
	Disconnected      = 2
	UnknownConnection = 3
)

// PageFlipEvent requests a flip completion event.
const PageFlipEvent = 0x01

const modeNameLen = 32

// ModeInfo is a display timing, laid out like struct drm_mode_modeinfo.
type ModeInfo struct {
	Clock                                         uint32
	Hdisplay, HsyncStart, HsyncEnd, Htotal, Hskew uint16
	Vdisplay, VsyncStart, VsyncEnd, Vtotal, Vscan uint16

	Vrefresh uint32

	Flags uint32
	Type  uint32
	name  [modeNameLen]uint8
}

// mode types
const (
	ModeTypePreferred = 1 << 3
	ModeTypeDriver    = 1 << 6
)

func (m ModeInfo) Name() string {
	if i := bytes.IndexByte(m.name[:], 0); i >= 0 {
		return string(m.name[:i])
	}
	return string(m.name[:])
}

func (m ModeInfo) Preferred() bool { return m.Type&ModeTypePreferred != 0 }

func (m ModeInfo) String() string {
	return fmt.Sprintf(`%dx%d@%d`, m.Hdisplay, m.Vdisplay, m.Vrefresh)
}

// Version of the kernel driver.
type Version struct {
	Major, Minor, Patch int32
	Name                string
	Date                string
	Desc                string
}

type Resources struct {
	Fbs        []uint32
	Crtcs      []uint32
	Connectors []uint32
	Encoders   []uint32

	MinWidth, MaxWidth   uint32
	MinHeight, MaxHeight uint32
}

type Connector struct {
	ID         uint32
	EncoderID  uint32 // current encoder, 0 if none
	Type       uint32
	TypeID     uint32
	Connection uint32
	MMWidth    uint32
	MMHeight   uint32
	Modes      []ModeInfo
	Encoders   []uint32
}

var connectorTypeNames = map[uint32]string{
	0: `Unknown`, 1: `VGA`, 2: `DVI-I`, 3: `DVI-D`, 4: `DVI-A`, 5: `Composite`,
	6: `SVIDEO`, 7: `LVDS`, 8: `Component`, 9: `DIN`, 10: `DP`, 11: `HDMI-A`,
	12: `HDMI-B`, 13: `TV`, 14: `eDP`, 15: `Virtual`, 16: `DSI`, 17: `DPI`,
	18: `Writeback`, 19: `SPI`, 20: `USB`,
}

// Name is the connector name as used by the kernel, e.g. "HDMI-A-1".
func (c *Connector) Name() string {
	if c == nil {
		return ``
	}
	t, ok := connectorTypeNames[c.Type]
	if !ok {
		t = fmt.Sprintf(`type%d`, c.Type)
	}
	return fmt.Sprintf(`%s-%d`, t, c.TypeID)
}

func (c *Connector) Connected() bool { return c != nil && c.Connection == Connected }

type Encoder struct {
	ID             uint32
	Type           uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
	PossibleClones uint32
}

type Crtc struct {
	ID        uint32
	FbID      uint32
	X, Y      uint32
	GammaSize uint32
	ModeValid bool
	Mode      ModeInfo
}
