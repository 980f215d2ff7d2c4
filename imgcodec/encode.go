package imgcodec

import (
	"bytes"
	"image/png"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"chimatools/chima"
	"chimatools/pixbuf"
)

// Supports reports whether an image of the given depth can be stored in f.
func Supports(f Format, depth pixbuf.Depth) bool {
	switch f {
	case RAW, ZSTD:
		return depth.Valid()
	case PNG, TIFF:
		return depth == pixbuf.Depth8 || depth == pixbuf.Depth16
	case BMP, TGA:
		return depth == pixbuf.Depth8
	}
	return false
}

// Encode serializes img in format f.
func Encode(img *pixbuf.Image, f Format) ([]byte, error) {
	const op = "imgcodec.Encode"
	if img == nil || img.Released() {
		return nil, chima.Errorf(chima.InvalidArgument, op, "nil image")
	}
	if !f.Valid() {
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "unknown format %v", f)
	}
	if !Supports(f, img.Depth) {
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "%v cannot store %v images", f, img.Depth)
	}

	var buf bytes.Buffer
	var err error
	switch f {
	case RAW:
		return img.Bytes(), nil
	case ZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, chima.Wrap(chima.AllocationFailure, op, err)
		}
		defer enc.Close()
		return enc.EncodeAll(img.Bytes(), nil), nil
	case PNG:
		err = png.Encode(&buf, img.ToImage())
	case BMP:
		err = bmp.Encode(&buf, img.ToImage())
	case TIFF:
		err = tiff.Encode(&buf, img.ToImage(), &tiff.Options{Compression: tiff.Deflate})
	case TGA:
		err = encodeTGA(&buf, img)
	}
	if err != nil {
		return nil, chima.Wrap(chima.FileWriteFailure, op, err)
	}
	return buf.Bytes(), nil
}
