package imgcodec

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"

	"chimatools/chima"
	"chimatools/pixbuf"
)

const (
	tgaTrueColor    = 2
	tgaGrey         = 3
	tgaTrueColorRLE = 10
	tgaGreyRLE      = 11

	tgaTopLeft = 0x20
)

type tgaHeader struct {
	IDLength       uint8
	ColormapType   uint8
	ImageType      uint8
	ColormapIndex  uint16
	ColormapLength uint16
	ColormapSize   uint8
	XOrigin        uint16
	YOrigin        uint16
	Width          uint16
	Height         uint16
	PixelSize      uint8
	Attributes     uint8
}

// encodeTGA writes an uncompressed, bottom-up TGA. Grey images use type 3,
// three channels 24 bpp, two or four channels 32 bpp.
func encodeTGA(w io.Writer, img *pixbuf.Image) error {
	const op = "imgcodec.encodeTGA"
	if img.Width > 0xFFFF || img.Height > 0xFFFF {
		return chima.Errorf(chima.UnsupportedFormat, op, "%dx%d is too large for TGA", img.Width, img.Height)
	}
	h := tgaHeader{
		ImageType: tgaTrueColor,
		Width:     uint16(img.Width),
		Height:    uint16(img.Height),
	}
	bpp := 4
	switch img.Channels {
	case 1:
		h.ImageType = tgaGrey
		bpp = 1
	case 3:
		bpp = 3
	default:
		h.Attributes = 8
	}
	h.PixelSize = uint8(bpp * 8)
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}

	row := make([]byte, img.Width*bpp)
	for y := img.Height - 1; y >= 0; y-- {
		for x := 0; x < img.Width; x++ {
			p := img.Offset(x, y)
			q := x * bpp
			px := img.Pix8[p : p+img.Channels]
			switch img.Channels {
			case 1:
				row[q] = px[0]
			case 2:
				row[q], row[q+1], row[q+2], row[q+3] = px[0], px[0], px[0], px[1]
			case 3:
				row[q], row[q+1], row[q+2] = px[2], px[1], px[0]
			case 4:
				row[q], row[q+1], row[q+2], row[q+3] = px[2], px[1], px[0], px[3]
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// decodeTGA reads uncompressed or run-length encoded true color (24/32 bpp)
// and grey (8 bpp) TGA images.
func decodeTGA(data []byte) (image.Image, error) {
	const op = "imgcodec.decodeTGA"
	r := bytes.NewReader(data)
	var h tgaHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, chima.Errorf(chima.TruncatedFile, op, "invalid tga header: %v", err)
	}
	rle := h.ImageType == tgaTrueColorRLE || h.ImageType == tgaGreyRLE
	grey := h.ImageType == tgaGrey || h.ImageType == tgaGreyRLE
	switch {
	case h.ColormapType != 0:
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "color mapped TGA")
	case grey && h.PixelSize != 8:
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "%d bit grey TGA", h.PixelSize)
	case !grey && h.ImageType != tgaTrueColor && h.ImageType != tgaTrueColorRLE:
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "TGA image type %d", h.ImageType)
	case !grey && h.PixelSize != 24 && h.PixelSize != 32:
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "%d bit TGA", h.PixelSize)
	case h.Width == 0 || h.Height == 0:
		return nil, chima.Errorf(chima.DecodeFailure, op, "empty TGA")
	}
	if _, err := r.Seek(int64(h.IDLength), io.SeekCurrent); err != nil {
		return nil, chima.Wrap(chima.TruncatedFile, op, err)
	}

	width, height := int(h.Width), int(h.Height)
	bpp := int(h.PixelSize) / 8
	pix := make([]byte, width*height*bpp)
	if rle {
		if err := readTGARLE(r, pix, bpp); err != nil {
			return nil, chima.Wrap(chima.TruncatedFile, op, err)
		}
	} else if _, err := io.ReadFull(r, pix); err != nil {
		return nil, chima.Wrap(chima.TruncatedFile, op, err)
	}

	topDown := h.Attributes&tgaTopLeft != 0
	srcRow := func(y int) []byte {
		if !topDown {
			y = height - 1 - y
		}
		return pix[y*width*bpp : (y+1)*width*bpp]
	}
	bounds := image.Rect(0, 0, width, height)
	if grey {
		g := image.NewGray(bounds)
		for y := 0; y < height; y++ {
			copy(g.Pix[y*g.Stride:], srcRow(y))
		}
		return g, nil
	}
	n := image.NewNRGBA(bounds)
	for y := 0; y < height; y++ {
		src := srcRow(y)
		for x := 0; x < width; x++ {
			s := src[x*bpp:]
			q := n.PixOffset(x, y)
			n.Pix[q+0], n.Pix[q+1], n.Pix[q+2], n.Pix[q+3] = s[2], s[1], s[0], 0xFF
			if bpp == 4 {
				n.Pix[q+3] = s[3]
			}
		}
	}
	return n, nil
}

func readTGARLE(r *bytes.Reader, pix []byte, bpp int) error {
	px := make([]byte, bpp)
	for i := 0; i < len(pix); {
		c, err := r.ReadByte()
		if err != nil {
			return err
		}
		count := int(c&0x7F) + 1
		if i+count*bpp > len(pix) {
			count = (len(pix) - i) / bpp
		}
		if c&0x80 != 0 {
			if _, err := io.ReadFull(r, px); err != nil {
				return err
			}
			for j := 0; j < count; j++ {
				copy(pix[i:], px)
				i += bpp
			}
			continue
		}
		if _, err := io.ReadFull(r, pix[i:i+count*bpp]); err != nil {
			return err
		}
		i += count * bpp
	}
	return nil
}
