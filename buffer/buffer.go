// Package buffer provides presentable pixel buffers in XRGB8888 layout.
package buffer

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/srlehn/drmswap/internal/consts"
	"github.com/srlehn/drmswap/internal/errors"
)

// Geometry describes the memory layout of a buffer as the kernel sees it.
type Geometry struct {
	Width, Height uint32
	Stride        uint32 // bytes per row
	Size          uint64 // bytes
	Depth, BPP    uint8
	Handle        uint32 // memory handle (GEM handle for dumb buffers)
}

// Buffer is a block of pixel memory presentable to the display.
// Pix is only set when the memory is CPU-mapped.
type Buffer struct {
	id uint64
	Geometry
	Pix []byte
}

// New wraps an existing allocation. id must be unique per allocator.
func New(id uint64, geom Geometry, pix []byte) (*Buffer, error) {
	if geom.Width == 0 || geom.Height == 0 {
		return nil, errors.Kindf(errors.ErrResource, `invalid buffer size %dx%d`, geom.Width, geom.Height)
	}
	if geom.BPP == 0 {
		geom.BPP = consts.BitsPerPixel
	}
	if geom.Depth == 0 {
		geom.Depth = consts.ColorDepth
	}
	if geom.BPP != consts.BitsPerPixel {
		return nil, errors.Kindf(errors.ErrResource, `unsupported bits per pixel: %d`, geom.BPP)
	}
	if minStride := geom.Width * consts.BytesPerPixel; geom.Stride < minStride {
		return nil, errors.Kindf(errors.ErrResource, `stride %d below minimum %d`, geom.Stride, minStride)
	}
	if need := uint64(geom.Stride) * uint64(geom.Height); geom.Size < need {
		return nil, errors.Kindf(errors.ErrResource, `size %d below stride*height %d`, geom.Size, need)
	}
	if pix != nil && uint64(len(pix)) < geom.Size {
		return nil, errors.Kindf(errors.ErrResource, `mapping of %d bytes shorter than buffer size %d`, len(pix), geom.Size)
	}
	return &Buffer{id: id, Geometry: geom, Pix: pix}, nil
}

// ID is the identity of the buffer, stable for its lifetime.
func (b *Buffer) ID() uint64 {
	if b == nil {
		return 0
	}
	return b.id
}

// Mapped reports whether the pixels are CPU-writable.
func (b *Buffer) Mapped() bool { return b != nil && b.Pix != nil }

func (b *Buffer) String() string {
	if b == nil {
		return `<nil buffer>`
	}
	return `buffer#` + strconv.FormatUint(b.id, 10)
}

var _ draw.Image = (*Buffer)(nil)

func (b *Buffer) ColorModel() color.Model { return color.RGBAModel }

func (b *Buffer) Bounds() image.Rectangle {
	if b == nil {
		return image.Rectangle{}
	}
	return image.Rect(0, 0, int(b.Width), int(b.Height))
}

func (b *Buffer) offset(x, y int) int {
	return y*int(b.Stride) + x*consts.BytesPerPixel
}

func (b *Buffer) At(x, y int) color.Color {
	if !b.Mapped() || !(image.Point{x, y}.In(b.Bounds())) {
		return color.RGBA{}
	}
	o := b.offset(x, y)
	return color.RGBA{R: b.Pix[o+2], G: b.Pix[o+1], B: b.Pix[o], A: 0xff}
}

func (b *Buffer) Set(x, y int, c color.Color) {
	if !b.Mapped() || c == nil || !(image.Point{x, y}.In(b.Bounds())) {
		return
	}
	o := b.offset(x, y)
	r, g, bl, _ := c.RGBA()
	b.Pix[o] = byte(bl >> 8)
	b.Pix[o+1] = byte(g >> 8)
	b.Pix[o+2] = byte(r >> 8)
	b.Pix[o+3] = 0xff
}

// XRGB packs c into the buffer's native pixel value.
func XRGB(c color.Color) uint32 {
	r, g, b, _ := c.RGBA()
	return 0xff<<24 | (r>>8)<<16 | (g>>8)<<8 | b>>8
}

// Fill sets every visible pixel to c.
func (b *Buffer) Fill(c color.Color) error {
	if b == nil {
		return errors.NilReceiver()
	}
	if !b.Mapped() {
		return errors.New(consts.ErrNotMapped)
	}
	px := XRGB(c)
	rowLen := int(b.Width) * consts.BytesPerPixel
	first := b.Pix[:rowLen]
	for x := 0; x < rowLen; x += consts.BytesPerPixel {
		binary.LittleEndian.PutUint32(first[x:], px)
	}
	for y := 1; y < int(b.Height); y++ {
		o := y * int(b.Stride)
		copy(b.Pix[o:o+rowLen], first)
	}
	return nil
}

// Blit copies src into the buffer with src.Bounds().Min placed at the origin.
// Pixels outside of the buffer are clipped, uncovered pixels are left as is.
func (b *Buffer) Blit(src *image.RGBA) error {
	if b == nil {
		return errors.NilReceiver()
	}
	if src == nil {
		return errors.NilParam()
	}
	if !b.Mapped() {
		return errors.New(consts.ErrNotMapped)
	}
	sb := src.Bounds()
	w := min(sb.Dx(), int(b.Width))
	h := min(sb.Dy(), int(b.Height))
	for y := 0; y < h; y++ {
		srow := src.Pix[src.PixOffset(sb.Min.X, sb.Min.Y+y):]
		drow := b.Pix[y*int(b.Stride):]
		for x := 0; x < w; x++ {
			s := srow[x*4 : x*4+4 : x*4+4]
			d := drow[x*4 : x*4+4 : x*4+4]
			d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 0xff
		}
	}
	return nil
}
