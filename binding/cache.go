// Package binding keeps the association between buffers and the kernel
// framebuffer objects registered for them.
//
// Bindings are created lazily the first time a buffer is about to be
// presented and torn down explicitly with Release. The cache does not own the
// buffers, it only tracks the kernel resource tied to each of them.
package binding

import (
	"log/slog"

	"github.com/google/btree"

	"github.com/srlehn/drmswap/buffer"
	"github.com/srlehn/drmswap/internal/errors"
	"github.com/srlehn/drmswap/internal/logx"
)

// Registrar registers and deregisters kernel framebuffer objects.
type Registrar interface {
	AddFramebuffer(geom buffer.Geometry) (fb uint32, _ error)
	RemoveFramebuffer(fb uint32) error
}

// Binding associates a buffer with a framebuffer handle.
type Binding struct {
	BufferID    uint64
	Framebuffer uint32
}

func byBufferID(a, b Binding) bool { return a.BufferID < b.BufferID }

// Cache maps buffer identities to framebuffer handles.
// It is not safe for concurrent use.
type Cache struct {
	reg      Registrar
	tree     *btree.BTreeG[Binding]
	logger   logx.LoggerProvider
	created  uint64
	released uint64
}

func New(reg Registrar, logger logx.LoggerProvider) (*Cache, error) {
	if reg == nil {
		return nil, errors.NilParam()
	}
	if logger == nil {
		logger = logx.Discard
	}
	return &Cache{
		reg:    reg,
		tree:   btree.NewG(8, byBufferID),
		logger: logger,
	}, nil
}

// Resolve returns the framebuffer handle bound to buf, registering a new
// framebuffer object on first use.
func (c *Cache) Resolve(buf *buffer.Buffer) (uint32, error) {
	if c == nil || c.tree == nil {
		return 0, errors.NilReceiver()
	}
	if buf == nil {
		return 0, errors.NilParam()
	}
	if b, ok := c.tree.Get(Binding{BufferID: buf.ID()}); ok {
		return b.Framebuffer, nil
	}
	fb, err := c.reg.AddFramebuffer(buf.Geometry)
	if err != nil {
		return 0, errors.Kind(errors.ErrResource, errors.WrapPrefix(err, `bind `+buf.String(), 0))
	}
	c.tree.ReplaceOrInsert(Binding{BufferID: buf.ID(), Framebuffer: fb})
	c.created++
	logx.Debug(`framebuffer bound`, c.logger, `buffer`, buf.ID(), `fb`, fb,
		`size`, slog.GroupValue(slog.Any(`w`, buf.Width), slog.Any(`h`, buf.Height), slog.Any(`stride`, buf.Stride)))
	return fb, nil
}

// Lookup returns the handle bound to buf without creating one.
func (c *Cache) Lookup(buf *buffer.Buffer) (uint32, bool) {
	if c == nil || c.tree == nil || buf == nil {
		return 0, false
	}
	b, ok := c.tree.Get(Binding{BufferID: buf.ID()})
	return b.Framebuffer, ok
}

// Release deregisters the framebuffer bound to buf, if any. It has to be
// called before the buffer memory is freed.
func (c *Cache) Release(buf *buffer.Buffer) error {
	if c == nil || c.tree == nil {
		return errors.NilReceiver()
	}
	if buf == nil {
		return errors.NilParam()
	}
	return c.release(buf.ID())
}

func (c *Cache) release(id uint64) error {
	b, ok := c.tree.Get(Binding{BufferID: id})
	if !ok {
		return nil
	}
	// the binding is dropped even if the kernel refuses, a retry would
	// target an object in an unknown state
	c.tree.Delete(b)
	c.released++
	if err := c.reg.RemoveFramebuffer(b.Framebuffer); err != nil {
		return errors.Kind(errors.ErrResource, errors.Errorf(`unbind framebuffer %d of buffer#%d: %w`, b.Framebuffer, id, err))
	}
	logx.Debug(`framebuffer released`, c.logger, `buffer`, id, `fb`, b.Framebuffer)
	return nil
}

// ReleaseAll releases every binding in buffer order and joins the errors.
func (c *Cache) ReleaseAll() error {
	if c == nil || c.tree == nil {
		return nil
	}
	var ids []uint64
	c.tree.Ascend(func(b Binding) bool {
		ids = append(ids, b.BufferID)
		return true
	})
	var errs []error
	for _, id := range ids {
		if err := c.release(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements io.Closer for teardown.
func (c *Cache) Close() error { return c.ReleaseAll() }

// Len returns the number of live bindings.
func (c *Cache) Len() int {
	if c == nil || c.tree == nil {
		return 0
	}
	return c.tree.Len()
}

// Bindings returns the live bindings ordered by buffer id.
func (c *Cache) Bindings() []Binding {
	if c == nil || c.tree == nil {
		return nil
	}
	ret := make([]Binding, 0, c.tree.Len())
	c.tree.Ascend(func(b Binding) bool {
		ret = append(ret, b)
		return true
	})
	return ret
}

// Stats returns the number of bindings created and released so far.
func (c *Cache) Stats() (created, released uint64) {
	if c == nil {
		return 0, 0
	}
	return c.created, c.released
}
