package framecap

import (
	"image"

	"golang.org/x/image/draw"
)

// CurrentFrame holds the most recently captured frame as an RGBA8 pixel
// buffer, together with its frame identifier and the file extension it
// should be exported with.
//
// CurrentFrame does no locking. The owner (see [Capturer]) serializes
// access; use Clone to hand a frame to another goroutine.
type CurrentFrame struct {
	// Image is the captured pixel buffer. Rows are tightly packed.
	Image *image.RGBA

	// FrameID identifies the capture that produced Image.
	FrameID uint64

	// Extension is the file extension for exporting the frame, without dot.
	Extension string
}

// NewCurrentFrame returns an empty frame with a 0x0 buffer.
func NewCurrentFrame() *CurrentFrame {
	return &CurrentFrame{Image: image.NewRGBA(image.Rectangle{})}
}

// rawPixels is implemented by pixel buffers that expose their packed
// storage directly, such as *gg.Pixmap.
type rawPixels interface {
	Bounds() image.Rectangle
	Data() []uint8
}

// Update records a new frame. The frame id and extension are always stored.
// The source pixels are copied as raw bytes and reinterpreted as RGBA8 of the
// source's dimensions; if the source holds fewer than width*height*4 bytes
// the buffer keeps its previous contents and the failure is logged.
func (f *CurrentFrame) Update(frameID uint64, src image.Image, ext string) {
	f.FrameID = frameID
	f.Extension = ext

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	pix, ok := packedBytes(src)
	if !ok {
		// No packed layout (YCbCr, paletted, ...): convert.
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		pix = dst.Pix
	}
	f.setPixels(uint32(w), uint32(h), pix) //nolint:gosec // bounds are non-negative
}

// UpdateRaw records a new frame from a raw RGBA8 byte buffer of the given
// dimensions. It follows the same contract as Update.
func (f *CurrentFrame) UpdateRaw(frameID uint64, width, height uint32, pix []byte, ext string) {
	f.applyRaw(frameID, width, height, pix, ext)
}

// applyRaw is UpdateRaw that reports whether the pixel buffer was replaced.
func (f *CurrentFrame) applyRaw(frameID uint64, width, height uint32, pix []byte, ext string) bool {
	f.FrameID = frameID
	f.Extension = ext
	return f.setPixels(width, height, pix)
}

func (f *CurrentFrame) setPixels(width, height uint32, pix []byte) bool {
	need := int(width) * int(height) * 4
	if len(pix) < need {
		Logger().Error("error updating current frame buffer",
			"frame_id", f.FrameID,
			"width", width,
			"height", height,
			"have", len(pix),
			"need", need)
		return false
	}
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	copy(img.Pix, pix[:need])
	f.Image = img
	return true
}

// Dimensions returns the [width, height] of the pixel buffer.
func (f *CurrentFrame) Dimensions() [2]uint32 {
	if f.Image == nil {
		return [2]uint32{}
	}
	b := f.Image.Bounds()
	return [2]uint32{uint32(b.Dx()), uint32(b.Dy())} //nolint:gosec // bounds are non-negative
}

// Clone returns a deep copy of the frame.
func (f *CurrentFrame) Clone() *CurrentFrame {
	c := &CurrentFrame{FrameID: f.FrameID, Extension: f.Extension}
	if f.Image == nil {
		c.Image = image.NewRGBA(image.Rectangle{})
		return c
	}
	r := f.Image.Rect
	c.Image = image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	copy(c.Image.Pix, tightRows(f.Image.Pix, f.Image.Stride, r, 4))
	return c
}

// packedBytes returns the source's pixel storage with any row padding
// removed, or false if the source has no packed representation.
func packedBytes(src image.Image) ([]byte, bool) {
	switch img := src.(type) {
	case *image.RGBA:
		return tightRows(img.Pix, img.Stride, img.Rect, 4), true
	case *image.NRGBA:
		return tightRows(img.Pix, img.Stride, img.Rect, 4), true
	case *image.RGBA64:
		return littleEndian16(tightRows(img.Pix, img.Stride, img.Rect, 8)), true
	case *image.NRGBA64:
		return littleEndian16(tightRows(img.Pix, img.Stride, img.Rect, 8)), true
	case *image.Gray:
		return tightRows(img.Pix, img.Stride, img.Rect, 1), true
	case *image.Gray16:
		return littleEndian16(tightRows(img.Pix, img.Stride, img.Rect, 2)), true
	case *image.Alpha:
		return tightRows(img.Pix, img.Stride, img.Rect, 1), true
	case rawPixels:
		return img.Data(), true
	default:
		return nil, false
	}
}

// tightRows strips stride padding so rows are contiguous.
func tightRows(pix []byte, stride int, r image.Rectangle, bpp int) []byte {
	rowLen := r.Dx() * bpp
	if stride == rowLen {
		return pix[:min(len(pix), rowLen*r.Dy())]
	}
	out := make([]byte, 0, rowLen*r.Dy())
	for y := 0; y < r.Dy(); y++ {
		off := y * stride
		if off+rowLen > len(pix) {
			break
		}
		out = append(out, pix[off:off+rowLen]...)
	}
	return out
}

// littleEndian16 returns a copy of big-endian 16-bit samples in
// little-endian order, the in-memory layout of u16 subpixels on the
// platforms frames are captured on.
func littleEndian16(pix []byte) []byte {
	out := make([]byte, len(pix)&^1)
	for i := 0; i+1 < len(pix); i += 2 {
		out[i], out[i+1] = pix[i+1], pix[i]
	}
	return out
}
