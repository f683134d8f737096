//go:build linux

package display

import (
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/kms"
)

// DeviceInfo summarizes a DRM device for display to the user.
type DeviceInfo struct {
	Path       string
	Driver     string
	Version    string
	Connectors []ConnectorInfo
	Crtcs      []uint32
}

type ConnectorInfo struct {
	ID        uint32
	Name      string
	Connected bool
	Selected  bool // would be chosen by Open without a connector option
	Modes     []string
	Preferred string
}

// Describe lists the connectors and modes of the DRM device at path.
func Describe(path string) (*DeviceInfo, error) {
	dev, err := kms.Open(path)
	if err != nil {
		return nil, errors.Kind(errors.ErrConfig, err)
	}
	defer dev.Close()

	info := &DeviceInfo{Path: path}
	if v, err := dev.Version(); err == nil {
		info.Driver = v.Name
		info.Version = v.Desc
	}
	res, err := dev.Resources()
	if err != nil {
		return nil, errors.Kind(errors.ErrConfig, err)
	}
	info.Crtcs = res.Crtcs
	conns := make([]*kms.Connector, 0, len(res.Connectors))
	for _, id := range res.Connectors {
		c, err := dev.Connector(id)
		if err != nil {
			continue
		}
		conns = append(conns, c)
	}
	selected, _ := selectConnector(conns, ``)
	for _, c := range conns {
		ci := ConnectorInfo{
			ID:        c.ID,
			Name:      c.Name(),
			Connected: c.Connected(),
			Selected:  c == selected,
		}
		for _, m := range c.Modes {
			ci.Modes = append(ci.Modes, m.String())
		}
		if m, err := selectMode(c.Modes, ModeSpec{}); err == nil {
			ci.Preferred = m.String()
		}
		info.Connectors = append(info.Connectors, ci)
	}
	return info, nil
}
