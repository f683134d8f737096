//go:build linux

package display

import (
	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/flip"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/logx"
	"github.com/srlehn/drmswap/kms"
)

// KMS drives one connector through one CRTC of a DRM device with legacy
// modesetting and page flip events.
type KMS struct {
	dev        *kms.Device
	connector  *kms.Connector
	crtcID     uint32
	mode       kms.ModeInfo
	saved      *kms.Crtc
	configured bool
	alloc      *DumbAllocator
	logger     logx.LoggerProvider
}

var _ Target = (*KMS)(nil)

// Open opens the DRM device at path and selects connector, mode and CRTC.
// The CRTC configuration found is saved for Restore.
func Open(path string, opts Options) (_ *KMS, err error) {
	if opts.Logger == nil {
		opts.Logger = logx.Discard
	}
	dev, err := kms.Open(path)
	if err != nil {
		return nil, errors.Kind(errors.ErrConfig, err)
	}
	defer func() {
		if err != nil {
			_ = dev.Close()
		}
	}()

	res, err := dev.Resources()
	if err != nil {
		return nil, errors.Kind(errors.ErrConfig, err)
	}
	conns := make([]*kms.Connector, 0, len(res.Connectors))
	for _, id := range res.Connectors {
		c, err := dev.Connector(id)
		if err != nil {
			logx.Warn(`skipping connector`, opts.Logger, `id`, id, `err`, err)
			continue
		}
		conns = append(conns, c)
	}
	conn, err := selectConnector(conns, opts.Connector)
	if err != nil {
		return nil, err
	}
	mode, err := selectMode(conn.Modes, opts.Mode)
	if err != nil {
		return nil, errors.WrapPrefix(err, conn.Name(), 0)
	}
	encoders := make(map[uint32]*kms.Encoder, len(conn.Encoders))
	for _, id := range conn.Encoders {
		enc, err := dev.Encoder(id)
		if err != nil {
			continue
		}
		encoders[id] = enc
	}
	crtcID, err := selectCrtc(conn, encoders, res.Crtcs)
	if err != nil {
		return nil, err
	}
	saved, err := dev.Crtc(crtcID)
	if err != nil {
		return nil, errors.Kind(errors.ErrConfig, err)
	}
	logx.Info(`display selected`, opts.Logger,
		`device`, path, `connector`, conn.Name(), `crtc`, crtcID, `mode`, mode.String())

	return &KMS{
		dev:       dev,
		connector: conn,
		crtcID:    crtcID,
		mode:      mode,
		saved:     saved,
		alloc:     NewDumbAllocator(dev),
		logger:    opts.Logger,
	}, nil
}

func (t *KMS) Mode() Mode {
	if t == nil {
		return Mode{}
	}
	return Mode{
		Width:   uint32(t.mode.Hdisplay),
		Height:  uint32(t.mode.Vdisplay),
		Refresh: t.mode.Vrefresh,
		Name:    t.mode.Name(),
	}
}

func (t *KMS) Connector() string { return t.connector.Name() }

func (t *KMS) Allocator() buffer.Allocator { return t.alloc }

func (t *KMS) AddFramebuffer(geom buffer.Geometry) (uint32, error) {
	if t == nil || t.dev == nil {
		return 0, errors.NilReceiver()
	}
	return t.dev.AddFB(geom.Width, geom.Height, geom.Depth, geom.BPP, geom.Stride, geom.Handle)
}

func (t *KMS) RemoveFramebuffer(fb uint32) error {
	if t == nil || t.dev == nil {
		return errors.NilReceiver()
	}
	return t.dev.RmFB(fb)
}

func (t *KMS) Configure(fb uint32) error {
	if t == nil || t.dev == nil {
		return errors.NilReceiver()
	}
	mode := t.mode
	if err := t.dev.SetCrtc(t.crtcID, fb, 0, 0, []uint32{t.connector.ID}, &mode); err != nil {
		return errors.Kind(errors.ErrConfig, err)
	}
	t.configured = true
	return nil
}

// Restore sets the saved CRTC configuration again. It does nothing if
// Configure never succeeded.
func (t *KMS) Restore() error {
	if t == nil || t.dev == nil || !t.configured {
		return nil
	}
	var mode *kms.ModeInfo
	if t.saved.ModeValid {
		mode = &t.saved.Mode
	}
	var conns []uint32
	if t.saved.FbID != 0 {
		conns = []uint32{t.connector.ID}
	}
	if err := t.dev.SetCrtc(t.saved.ID, t.saved.FbID, t.saved.X, t.saved.Y, conns, mode); err != nil {
		return errors.Kind(errors.ErrConfig, err)
	}
	t.configured = false
	return nil
}

func (t *KMS) Present(fb uint32, token uint64) error {
	if t == nil || t.dev == nil {
		return errors.NilReceiver()
	}
	return t.dev.PageFlip(t.crtcID, fb, kms.PageFlipEvent, token)
}

func (t *KMS) Fd() int {
	if t == nil {
		return -1
	}
	return t.dev.Fd()
}

func (t *KMS) ReadCompletions() ([]flip.Completion, error) {
	if t == nil || t.dev == nil {
		return nil, errors.NilReceiver()
	}
	evs, err := kms.ReadEvents(t.dev)
	if err != nil {
		return nil, err
	}
	comps := make([]flip.Completion, 0, len(evs))
	for _, ev := range evs {
		if ev.Type != kms.EventFlipComplete {
			continue
		}
		comps = append(comps, flip.Completion{
			Token:    ev.UserData,
			Sequence: ev.Sequence,
			Crtc:     ev.CrtcID,
			Time:     ev.Time,
		})
	}
	return comps, nil
}

// Close closes the device. Restore and the release of all framebuffers and
// buffers must happen before.
func (t *KMS) Close() error {
	if t == nil || t.dev == nil {
		return nil
	}
	defer func() { t.dev = nil }()
	if n := t.alloc.Live(); n > 0 {
		logx.Warn(`closing device with live buffers`, t.logger, `count`, n)
	}
	return t.dev.Close()
}
