package display

import (
	"strconv"
	"strings"

	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/kms"
)

// ModeSpec selects a display mode. Zero fields match anything.
type ModeSpec struct {
	Width, Height uint32
	Refresh       uint32
}

func (s ModeSpec) IsZero() bool { return s == ModeSpec{} }

// ParseModeSpec parses "WxH" or "WxH@R". The empty string yields the zero
// ModeSpec which selects the preferred mode.
func ParseModeSpec(s string) (ModeSpec, error) {
	var spec ModeSpec
	if len(s) == 0 {
		return spec, nil
	}
	res, refresh, hasRefresh := strings.Cut(s, `@`)
	w, h, ok := strings.Cut(res, `x`)
	if !ok {
		return spec, errors.Kindf(errors.ErrConfig, `invalid mode %q, want WxH[@R]`, s)
	}
	parse := func(v string) (uint32, error) {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil || n == 0 {
			return 0, errors.Kindf(errors.ErrConfig, `invalid mode %q, want WxH[@R]`, s)
		}
		return uint32(n), nil
	}
	var err error
	if spec.Width, err = parse(w); err != nil {
		return spec, err
	}
	if spec.Height, err = parse(h); err != nil {
		return spec, err
	}
	if hasRefresh {
		if spec.Refresh, err = parse(refresh); err != nil {
			return spec, err
		}
	}
	return spec, nil
}

// selectConnector returns the connector named name or, if name is empty, the
// last connected connector with at least one mode.
func selectConnector(conns []*kms.Connector, name string) (*kms.Connector, error) {
	var found *kms.Connector
	for _, c := range conns {
		if c == nil {
			continue
		}
		if len(name) > 0 {
			if c.Name() == name || strconv.FormatUint(uint64(c.ID), 10) == name {
				found = c
				break
			}
			continue
		}
		if c.Connected() && len(c.Modes) > 0 {
			found = c
		}
	}
	switch {
	case found == nil && len(name) > 0:
		return nil, errors.Kindf(errors.ErrConfig, `connector %q not found`, name)
	case found == nil:
		return nil, errors.Kindf(errors.ErrConfig, `no connected connector with modes`)
	case !found.Connected():
		return nil, errors.Kindf(errors.ErrConfig, `connector %s is not connected`, found.Name())
	case len(found.Modes) == 0:
		return nil, errors.Kindf(errors.ErrConfig, `connector %s reports no modes`, found.Name())
	}
	return found, nil
}

// selectMode picks the first mode matching spec. For the zero spec the
// preferred mode is used, falling back to the first one.
func selectMode(modes []kms.ModeInfo, spec ModeSpec) (kms.ModeInfo, error) {
	if len(modes) == 0 {
		return kms.ModeInfo{}, errors.Kindf(errors.ErrConfig, `no modes`)
	}
	if spec.IsZero() {
		for _, m := range modes {
			if m.Preferred() {
				return m, nil
			}
		}
		return modes[0], nil
	}
	for _, m := range modes {
		if uint32(m.Hdisplay) != spec.Width || uint32(m.Vdisplay) != spec.Height {
			continue
		}
		if spec.Refresh != 0 && m.Vrefresh != spec.Refresh {
			continue
		}
		return m, nil
	}
	return kms.ModeInfo{}, errors.Kindf(errors.ErrConfig, `no mode matches %dx%d@%d`, spec.Width, spec.Height, spec.Refresh)
}

// selectCrtc keeps the crtc currently driving the connector if there is one.
// Otherwise the last crtc usable by the first encoder that can drive any is
// taken.
func selectCrtc(conn *kms.Connector, encoders map[uint32]*kms.Encoder, crtcs []uint32) (uint32, error) {
	if conn == nil {
		return 0, errors.NilParam()
	}
	if enc, ok := encoders[conn.EncoderID]; ok && enc != nil && enc.CrtcID != 0 {
		return enc.CrtcID, nil
	}
	for _, id := range conn.Encoders {
		enc, ok := encoders[id]
		if !ok || enc == nil {
			continue
		}
		var crtc uint32
		for i, c := range crtcs {
			if i < 32 && enc.PossibleCrtcs&(1<<i) != 0 {
				crtc = c
			}
		}
		if crtc != 0 {
			return crtc, nil
		}
	}
	return 0, errors.Kindf(errors.ErrConfig, `no crtc can drive connector %s`, conn.Name())
}
