package imgcodec

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"chimatools/chima"
	"chimatools/pixbuf"
)

// Decode decodes a PNG, JPEG, GIF (first frame), BMP, TIFF or WebP image.
// The channel count follows the decoded color model.
func Decode(data []byte, depth pixbuf.Depth) (*pixbuf.Image, error) {
	const op = "imgcodec.Decode"
	img, _, err := image.Decode(bytes.NewReader(data))
	if err == image.ErrFormat {
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "unrecognized image data")
	}
	if err != nil {
		return nil, chima.Wrap(chima.DecodeFailure, op, err)
	}
	out, err := pixbuf.FromImage(img, 0, depth)
	return out, chima.Wrap(chima.DecodeFailure, op, err)
}

// Load reads and decodes an image file. Files with a .tga extension go
// through the TGA reader, everything else through Decode.
func Load(path string, depth pixbuf.Depth) (*pixbuf.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, chima.Wrap(chima.FileOpenFailure, "imgcodec.Load", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err := decodeTGA(data)
		if err != nil {
			return nil, err
		}
		return pixbuf.FromImage(img, 0, depth)
	}
	return Decode(data, depth)
}

// zstdMaxWindow bounds decoder memory for hostile payloads.
const zstdMaxWindow = 1 << 30

// DecodePayload turns an atlas payload back into an image of the declared
// shape. Encoded payloads are converted to the declared channels and depth.
func DecodePayload(f Format, data []byte, w, h, channels int, depth pixbuf.Depth) (*pixbuf.Image, error) {
	const op = "imgcodec.DecodePayload"
	var (
		img image.Image
		err error
	)
	switch f {
	case RAW:
		return pixbuf.FromBytes(w, h, channels, depth, data)
	case ZSTD:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(zstdMaxWindow))
		if err != nil {
			return nil, chima.Wrap(chima.AllocationFailure, op, err)
		}
		defer dec.Close()
		raw, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, chima.Wrap(chima.DecodeFailure, op, err)
		}
		return pixbuf.FromBytes(w, h, channels, depth, raw)
	case PNG:
		img, err = png.Decode(bytes.NewReader(data))
	case BMP:
		img, err = bmp.Decode(bytes.NewReader(data))
	case TIFF:
		img, err = tiff.Decode(bytes.NewReader(data))
	case TGA:
		img, err = decodeTGA(data)
	default:
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "unknown payload format %v", f)
	}
	if err != nil {
		return nil, chima.Wrap(chima.DecodeFailure, op, err)
	}
	if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
		return nil, chima.Errorf(chima.DecodeFailure, op,
			"%v payload is %dx%d, header says %dx%d", f, b.Dx(), b.Dy(), w, h)
	}
	return pixbuf.FromImage(img, channels, depth)
}
