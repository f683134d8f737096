//go:build linux

package kms

import (
	"github.com/NeowayLabs/drm/mode"

	"github.com/srlehn/drmswap/internal/errors"
)

func fromInfo(m mode.Info) ModeInfo {
	r := ModeInfo{
		Clock:      m.Clock,
		Hdisplay:   m.Hdisplay,
		HsyncStart: m.HsyncStart,
		HsyncEnd:   m.HsyncEnd,
		Htotal:     m.Htotal,
		Hskew:      m.Hskew,
		Vdisplay:   m.Vdisplay,
		VsyncStart: m.VsyncStart,
		VsyncEnd:   m.VsyncEnd,
		Vtotal:     m.Vtotal,
		Vscan:      m.Vscan,
		Vrefresh:   m.Vrefresh,
		Flags:      m.Flags,
		Type:       m.Type,
	}
	copy(r.name[:], m.Name[:])
	return r
}

func (m ModeInfo) info() mode.Info {
	r := mode.Info{
		Clock:      m.Clock,
		Hdisplay:   m.Hdisplay,
		HsyncStart: m.HsyncStart,
		HsyncEnd:   m.HsyncEnd,
		Htotal:     m.Htotal,
		Hskew:      m.Hskew,
		Vdisplay:   m.Vdisplay,
		VsyncStart: m.VsyncStart,
		VsyncEnd:   m.VsyncEnd,
		Vtotal:     m.Vtotal,
		Vscan:      m.Vscan,
		Vrefresh:   m.Vrefresh,
		Flags:      m.Flags,
		Type:       m.Type,
	}
	copy(r.Name[:], m.name[:])
	return r
}

func (d *Device) Resources() (*Resources, error) {
	f, err := d.file()
	if err != nil {
		return nil, err
	}
	r, err := mode.GetResources(f)
	if err != nil {
		return nil, errors.WrapPrefix(err, `DRM_IOCTL_MODE_GETRESOURCES`, 0)
	}
	return &Resources{
		Fbs:        r.Fbs,
		Crtcs:      r.Crtcs,
		Connectors: r.Connectors,
		Encoders:   r.Encoders,
		MinWidth:   r.MinWidth,
		MaxWidth:   r.MaxWidth,
		MinHeight:  r.MinHeight,
		MaxHeight:  r.MaxHeight,
	}, nil
}

func (d *Device) Connector(id uint32) (*Connector, error) {
	f, err := d.file()
	if err != nil {
		return nil, err
	}
	c, err := mode.GetConnector(f, id)
	if err != nil {
		return nil, errors.WrapPrefix(err, `DRM_IOCTL_MODE_GETCONNECTOR`, 0)
	}
	ret := &Connector{
		ID:         c.ID,
		EncoderID:  c.EncoderID,
		Type:       c.Type,
		TypeID:     c.TypeID,
		Connection: uint32(c.Connection),
		MMWidth:    c.Width,
		MMHeight:   c.Height,
		Encoders:   c.Encoders,
	}
	// a connector without modes still comes back with one zeroed entry
	for _, m := range c.Modes {
		if m.Hdisplay == 0 || m.Vdisplay == 0 {
			continue
		}
		ret.Modes = append(ret.Modes, fromInfo(m))
	}
	return ret, nil
}

func (d *Device) Encoder(id uint32) (*Encoder, error) {
	f, err := d.file()
	if err != nil {
		return nil, err
	}
	e, err := mode.GetEncoder(f, id)
	if err != nil {
		return nil, errors.WrapPrefix(err, `DRM_IOCTL_MODE_GETENCODER`, 0)
	}
	return &Encoder{
		ID:             e.ID,
		Type:           e.Type,
		CrtcID:         e.CrtcID,
		PossibleCrtcs:  e.PossibleCrtcs,
		PossibleClones: e.PossibleClones,
	}, nil
}

func (d *Device) Crtc(id uint32) (*Crtc, error) {
	f, err := d.file()
	if err != nil {
		return nil, err
	}
	c, err := mode.GetCrtc(f, id)
	if err != nil {
		return nil, errors.WrapPrefix(err, `DRM_IOCTL_MODE_GETCRTC`, 0)
	}
	return &Crtc{
		ID:        c.ID,
		FbID:      c.BufferID,
		X:         c.X,
		Y:         c.Y,
		GammaSize: uint32(c.GammaSize),
		ModeValid: c.ModeValid != 0,
		Mode:      fromInfo(c.Mode),
	}, nil
}

// SetCrtc scans out fb on crtc, driving the given connectors with m.
// A nil m disables the crtc.
func (d *Device) SetCrtc(crtcID, fbID, x, y uint32, connectors []uint32, m *ModeInfo) error {
	f, err := d.file()
	if err != nil {
		return err
	}
	var conns *uint32
	if len(connectors) > 0 {
		conns = &connectors[0]
	}
	var info *mode.Info
	if m != nil {
		mi := m.info()
		info = &mi
	}
	if err := mode.SetCrtc(f, crtcID, fbID, x, y, conns, len(connectors), info); err != nil {
		return errors.WrapPrefix(err, `DRM_IOCTL_MODE_SETCRTC`, 0)
	}
	return nil
}
