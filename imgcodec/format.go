// Package imgcodec decodes image files into pixbuf images and encodes
// pixbuf images back into the formats a sprite sheet can embed.
package imgcodec

import (
	"fmt"
	"strings"

	"chimatools/chima"
)

// Format identifies how an atlas payload is stored.
type Format int

const (
	// RAW stores little-endian pixel elements as-is.
	RAW Format = iota
	PNG
	BMP
	TGA
	TIFF
	// ZSTD stores RAW bytes compressed with zstd.
	ZSTD
)

// MaxTagLen is the longest format tag; the on-disk field adds a NUL.
const MaxTagLen = 6

var tags = [...]string{
	RAW:  "RAW",
	PNG:  "PNG",
	BMP:  "BMP",
	TGA:  "TGA",
	TIFF: "TIFF",
	ZSTD: "ZSTD",
}

// Tag returns the ASCII tag written to sheet headers.
func (f Format) Tag() string {
	if f < 0 || int(f) >= len(tags) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return tags[f]
}

func (f Format) String() string {
	return f.Tag()
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f >= 0 && int(f) < len(tags)
}

// ParseFormat maps a tag, case-insensitively, to its Format.
func ParseFormat(tag string) (Format, error) {
	for f, t := range tags {
		if strings.EqualFold(tag, t) {
			return Format(f), nil
		}
	}
	return 0, chima.Errorf(chima.UnsupportedFormat, "imgcodec.ParseFormat", "unknown format %q", tag)
}
