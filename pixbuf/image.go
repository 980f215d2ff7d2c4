// Package pixbuf implements the owned pixel buffers the sprite sheet
// builder works on, and alpha compositing between them.
package pixbuf

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/chewxy/math32"

	"chimatools/chima"
)

// Depth is the element representation of a pixel channel. The values are
// the ones stored in the sheet file header.
type Depth uint8

const (
	Depth8   Depth = 0 // uint8, [0, 255]
	Depth16  Depth = 1 // uint16, [0, 65535]
	Depth32F Depth = 2 // float32, [0.0, 1.0]
)

// Valid reports whether d is one of the three supported depth classes.
func (d Depth) Valid() bool {
	return d <= Depth32F
}

// Size is the element size in bytes.
func (d Depth) Size() int {
	switch d {
	case Depth8:
		return 1
	case Depth16:
		return 2
	case Depth32F:
		return 4
	}
	return 0
}

// Max is the value of a fully saturated channel.
func (d Depth) Max() float32 {
	switch d {
	case Depth8:
		return 0xFF
	case Depth16:
		return 0xFFFF
	}
	return 1
}

func (d Depth) String() string {
	switch d {
	case Depth8:
		return "8U"
	case Depth16:
		return "16U"
	case Depth32F:
		return "32F"
	}
	return fmt.Sprintf("Depth(%d)", uint8(d))
}

// maxElements bounds a single buffer; anything larger is reported as an
// allocation failure instead of panicking inside make.
const maxElements = 1 << 31

// Image is a row-major bitmap. Exactly one of the pixel slices is set,
// matching Depth, and it holds Width*Height*Channels elements.
type Image struct {
	Width    int
	Height   int
	Channels int
	Depth    Depth

	Pix8  []uint8
	Pix16 []uint16
	Pix32 []float32
}

func checkShape(op string, w, h, channels int, depth Depth) error {
	if w <= 0 || h <= 0 {
		return chima.Errorf(chima.InvalidArgument, op, "invalid size %dx%d", w, h)
	}
	if channels < 1 || channels > 4 {
		return chima.Errorf(chima.InvalidArgument, op, "invalid channel count %d", channels)
	}
	if !depth.Valid() {
		return chima.Errorf(chima.InvalidArgument, op, "invalid depth %v", depth)
	}
	if uint64(w)*uint64(h)*uint64(channels) > maxElements {
		return chima.Errorf(chima.AllocationFailure, op, "%dx%dx%d image is too large", w, h, channels)
	}
	return nil
}

func alloc(w, h, channels int, depth Depth) *Image {
	img := &Image{Width: w, Height: h, Channels: channels, Depth: depth}
	n := w * h * channels
	switch depth {
	case Depth8:
		img.Pix8 = make([]uint8, n)
	case Depth16:
		img.Pix16 = make([]uint16, n)
	case Depth32F:
		img.Pix32 = make([]float32, n)
	}
	return img
}

// New allocates a w×h image filled with bg.
func New(w, h, channels int, depth Depth, bg Color) (*Image, error) {
	if err := checkShape("pixbuf.New", w, h, channels, depth); err != nil {
		return nil, err
	}
	img := alloc(w, h, channels, depth)
	img.Fill(bg)
	return img, nil
}

// Fill sets every pixel to c. Integer depths store floor(c*max).
func (img *Image) Fill(c Color) {
	comps := c.Clamp().components()
	n := img.Len()
	switch img.Depth {
	case Depth8:
		var px [4]uint8
		for i := range px {
			px[i] = uint8(math32.Floor(comps[i] * 0xFF))
		}
		for i := 0; i < n; i += img.Channels {
			copy(img.Pix8[i:i+img.Channels], px[:img.Channels])
		}
	case Depth16:
		var px [4]uint16
		for i := range px {
			px[i] = uint16(math32.Floor(comps[i] * 0xFFFF))
		}
		for i := 0; i < n; i += img.Channels {
			copy(img.Pix16[i:i+img.Channels], px[:img.Channels])
		}
	case Depth32F:
		for i := 0; i < n; i += img.Channels {
			copy(img.Pix32[i:i+img.Channels], comps[:img.Channels])
		}
	}
}

// Len is the number of elements in the pixel buffer.
func (img *Image) Len() int {
	return img.Width * img.Height * img.Channels
}

// Released reports whether the pixel data has been dropped.
func (img *Image) Released() bool {
	return img.Pix8 == nil && img.Pix16 == nil && img.Pix32 == nil
}

// Release drops the pixel data. The image must not be used afterwards.
func (img *Image) Release() {
	if img == nil {
		return
	}
	img.Pix8, img.Pix16, img.Pix32 = nil, nil, nil
}

// Clone returns a deep copy.
func (img *Image) Clone() *Image {
	c := alloc(img.Width, img.Height, img.Channels, img.Depth)
	copy(c.Pix8, img.Pix8)
	copy(c.Pix16, img.Pix16)
	copy(c.Pix32, img.Pix32)
	return c
}

// FlipY mirrors the image vertically in place.
func (img *Image) FlipY() {
	stride := img.Width * img.Channels
	switch img.Depth {
	case Depth8:
		flipRows(img.Pix8, stride, img.Height)
	case Depth16:
		flipRows(img.Pix16, stride, img.Height)
	case Depth32F:
		flipRows(img.Pix32, stride, img.Height)
	}
}

func flipRows[T any](pix []T, stride, h int) {
	if len(pix) < stride*h {
		return
	}
	for top, bot := 0, h-1; top < bot; top, bot = top+1, bot-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bot*stride : (bot+1)*stride]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
}

// raw returns element i in channel units (0..255, 0..65535 or 0..1).
func (img *Image) raw(i int) float32 {
	switch img.Depth {
	case Depth8:
		return float32(img.Pix8[i])
	case Depth16:
		return float32(img.Pix16[i])
	}
	return img.Pix32[i]
}

// setRaw stores v in channel units, rounding and clamping integer depths.
func (img *Image) setRaw(i int, v float32) {
	switch img.Depth {
	case Depth8:
		img.Pix8[i] = uint8(math32.Max(0, math32.Min(0xFF, math32.Round(v))))
	case Depth16:
		img.Pix16[i] = uint16(math32.Max(0, math32.Min(0xFFFF, math32.Round(v))))
	case Depth32F:
		img.Pix32[i] = math32.Max(0, math32.Min(1, v))
	}
}

// Value returns element i normalized to [0, 1].
func (img *Image) Value(i int) float32 {
	return img.raw(i) / img.Depth.Max()
}

// SetValue stores the normalized value v at element i.
func (img *Image) SetValue(i int, v float32) {
	img.setRaw(i, v*img.Depth.Max())
}

// Offset is the element index of channel 0 of pixel (x, y).
func (img *Image) Offset(x, y int) int {
	return (y*img.Width + x) * img.Channels
}

// Bytes returns the pixel data as little-endian bytes.
func (img *Image) Bytes() []byte {
	switch img.Depth {
	case Depth8:
		return append([]byte(nil), img.Pix8...)
	case Depth16:
		b := make([]byte, len(img.Pix16)*2)
		for i, v := range img.Pix16 {
			binary.LittleEndian.PutUint16(b[i*2:], v)
		}
		return b
	case Depth32F:
		b := make([]byte, len(img.Pix32)*4)
		for i, v := range img.Pix32 {
			binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
		}
		return b
	}
	return nil
}

// FromBytes builds an image from little-endian pixel bytes as produced by
// Bytes. A short buffer is a truncation, a long one a decode failure.
func FromBytes(w, h, channels int, depth Depth, raw []byte) (*Image, error) {
	const op = "pixbuf.FromBytes"
	if err := checkShape(op, w, h, channels, depth); err != nil {
		return nil, err
	}
	want := w * h * channels * depth.Size()
	switch {
	case len(raw) < want:
		return nil, chima.Errorf(chima.TruncatedFile, op, "pixel data has %d bytes, want %d", len(raw), want)
	case len(raw) > want:
		return nil, chima.Errorf(chima.DecodeFailure, op, "pixel data has %d trailing bytes", len(raw)-want)
	}
	img := alloc(w, h, channels, depth)
	switch depth {
	case Depth8:
		copy(img.Pix8, raw)
	case Depth16:
		for i := range img.Pix16 {
			img.Pix16[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
	case Depth32F:
		for i := range img.Pix32 {
			img.Pix32[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	}
	return img, nil
}

// rgba reads pixel p (element offset) as normalized r, g, b, a. One channel
// is grey, two channels grey plus alpha.
func (img *Image) rgba(p int) (r, g, b, a float32) {
	switch img.Channels {
	case 1:
		v := img.Value(p)
		return v, v, v, 1
	case 2:
		v := img.Value(p)
		return v, v, v, img.Value(p + 1)
	case 3:
		return img.Value(p), img.Value(p + 1), img.Value(p + 2), 1
	}
	return img.Value(p), img.Value(p + 1), img.Value(p + 2), img.Value(p + 3)
}

func (img *Image) setRGBA(p int, r, g, b, a float32) {
	switch img.Channels {
	case 1:
		img.SetValue(p, luma(r, g, b))
	case 2:
		img.SetValue(p, luma(r, g, b))
		img.SetValue(p+1, a)
	case 3:
		img.SetValue(p, r)
		img.SetValue(p+1, g)
		img.SetValue(p+2, b)
	default:
		img.SetValue(p, r)
		img.SetValue(p+1, g)
		img.SetValue(p+2, b)
		img.SetValue(p+3, a)
	}
}

// luma uses the same weights as image/color's gray model.
func luma(r, g, b float32) float32 {
	return 0.299*r + 0.587*g + 0.114*b
}

// Convert returns a copy with a different channel count and/or depth.
// Grey expands into RGB, RGB collapses to luma, a missing alpha is opaque.
func (img *Image) Convert(channels int, depth Depth) (*Image, error) {
	if err := checkShape("pixbuf.Convert", img.Width, img.Height, channels, depth); err != nil {
		return nil, err
	}
	if channels == img.Channels && depth == img.Depth {
		return img.Clone(), nil
	}
	out := alloc(img.Width, img.Height, channels, depth)
	if channels == img.Channels {
		for i, n := 0, img.Len(); i < n; i++ {
			out.SetValue(i, img.Value(i))
		}
		return out, nil
	}
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b, a := img.rgba(img.Offset(x, y))
			out.setRGBA(out.Offset(x, y), r, g, b, a)
		}
	}
	return out, nil
}
