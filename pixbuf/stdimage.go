package pixbuf

import (
	"image"
	"image/color"

	"chimatools/chima"
)

// ChannelsOf guesses the channel count a decoder produced: grey models
// give 1, opaque images 3, everything else 4.
func ChannelsOf(img image.Image) int {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

// FromImage copies a standard library image into a new Image. A channels
// value of 0 picks ChannelsOf(img).
func FromImage(img image.Image, channels int, depth Depth) (*Image, error) {
	const op = "pixbuf.FromImage"
	if img == nil {
		return nil, chima.Errorf(chima.InvalidArgument, op, "nil image")
	}
	if channels == 0 {
		channels = ChannelsOf(img)
	}
	b := img.Bounds()
	if err := checkShape(op, b.Dx(), b.Dy(), channels, depth); err != nil {
		return nil, err
	}
	out := alloc(b.Dx(), b.Dy(), channels, depth)
	at := func(x, y int) color.NRGBA64 {
		return color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
	}
	// Non-premultiplied sources are read directly so translucent pixels
	// keep their exact color values.
	switch src := img.(type) {
	case *image.NRGBA:
		at = func(x, y int) color.NRGBA64 {
			c := src.NRGBAAt(x, y)
			return color.NRGBA64{R: uint16(c.R) * 0x101, G: uint16(c.G) * 0x101, B: uint16(c.B) * 0x101, A: uint16(c.A) * 0x101}
		}
	case *image.NRGBA64:
		at = src.NRGBA64At
	}
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := at(b.Min.X+x, b.Min.Y+y)
			out.setRGBA(out.Offset(x, y),
				float32(c.R)/0xFFFF, float32(c.G)/0xFFFF, float32(c.B)/0xFFFF, float32(c.A)/0xFFFF)
		}
	}
	return out, nil
}

// ToImage converts to the closest standard library type: Gray or Gray16
// for one channel, NRGBA or NRGBA64 otherwise. 32F data is quantized to
// 16 bits.
func (img *Image) ToImage() image.Image {
	r := image.Rect(0, 0, img.Width, img.Height)
	wide := img.Depth != Depth8
	if img.Channels == 1 {
		if wide {
			g := image.NewGray16(r)
			for i := 0; i < img.Len(); i++ {
				g.SetGray16(i%img.Width, i/img.Width, color.Gray16{Y: to16(img.Value(i))})
			}
			return g
		}
		g := image.NewGray(r)
		copy(g.Pix, img.Pix8)
		return g
	}
	if wide {
		n := image.NewNRGBA64(r)
		for y := 0; y < img.Height; y++ {
			for x := 0; x < img.Width; x++ {
				cr, cg, cb, ca := img.rgba(img.Offset(x, y))
				n.SetNRGBA64(x, y, color.NRGBA64{R: to16(cr), G: to16(cg), B: to16(cb), A: to16(ca)})
			}
		}
		return n
	}
	n := image.NewNRGBA(r)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := img.Offset(x, y)
			q := n.PixOffset(x, y)
			switch img.Channels {
			case 2:
				n.Pix[q+0], n.Pix[q+1], n.Pix[q+2], n.Pix[q+3] = img.Pix8[p], img.Pix8[p], img.Pix8[p], img.Pix8[p+1]
			case 3:
				n.Pix[q+0], n.Pix[q+1], n.Pix[q+2], n.Pix[q+3] = img.Pix8[p], img.Pix8[p+1], img.Pix8[p+2], 0xFF
			default:
				copy(n.Pix[q:q+4], img.Pix8[p:p+4])
			}
		}
	}
	return n
}

func to16(v float32) uint16 {
	return uint16(clamp01(v)*0xFFFF + 0.5)
}
