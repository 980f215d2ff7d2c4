package sheet

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/google/renameio/v2"

	"chimatools/chima"
	"chimatools/imgcodec"
	"chimatools/pixbuf"
)

// Magic opens every chima asset file.
var Magic = [12]byte{0x89, 'C', 'H', 'I', 'M', 'A', 0x89, 'A', 'S', 'S', 'E', 'T'}

const (
	// KindSpriteSheet is the asset kind of sprite sheet files.
	KindSpriteSheet = 1

	VersionMajor = 1
	VersionMinor = 0

	HeaderSize    = 53
	spriteRecSize = 28
	animRecSize   = 16
)

type header struct {
	Magic       [12]byte
	Kind        uint16
	Major       uint8
	Minor       uint8
	Sprites     uint32
	Anims       uint32
	NameSize    uint32
	NameOffset  uint32
	Width       uint32
	Height      uint32
	AtlasOffset uint32
	Channels    uint8
	Depth       uint8
	Format      [imgcodec.MaxTagLen + 1]byte
}

type spriteRec struct {
	X, Y, W, H uint32
	Duration   uint32
	NameOff    uint32
	NameLen    uint32
}

type animRec struct {
	Start, Count     uint32
	NameOff, NameLen uint32
}

var order = binary.LittleEndian

// EncodeTo writes s to w with the atlas stored in format f.
func EncodeTo(w io.Writer, s *SpriteSheet, f imgcodec.Format) error {
	data, err := Encode(s, f)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return chima.Wrap(chima.FileWriteFailure, "sheet.EncodeTo", err)
	}
	return nil
}

// Encode serializes s with the atlas stored in format f.
func Encode(s *SpriteSheet, f imgcodec.Format) ([]byte, error) {
	const op = "sheet.Encode"
	if s == nil {
		return nil, chima.Errorf(chima.InvalidArgument, op, "nil sheet")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	payload, err := imgcodec.Encode(s.Atlas, f)
	if err != nil {
		return nil, err
	}

	var names bytes.Buffer
	sprites := make([]spriteRec, len(s.Sprites))
	for i, sp := range s.Sprites {
		sprites[i] = spriteRec{
			X: sp.X, Y: sp.Y, W: sp.Width, H: sp.Height,
			Duration: sp.Duration,
			NameOff:  uint32(names.Len()),
			NameLen:  uint32(len(sp.Name)),
		}
		names.WriteString(sp.Name)
	}
	anims := make([]animRec, len(s.Animations))
	for i, a := range s.Animations {
		anims[i] = animRec{
			Start: a.Start, Count: a.Count,
			NameOff: uint32(names.Len()),
			NameLen: uint32(len(a.Name)),
		}
		names.WriteString(a.Name)
	}

	tables := uint64(HeaderSize) + spriteRecSize*uint64(len(sprites)) + animRecSize*uint64(len(anims))
	if tables+uint64(names.Len()) > 0xFFFFFFFF {
		return nil, chima.Errorf(chima.InvalidArgument, op, "sheet tables exceed 4 GiB")
	}
	h := header{
		Magic:       Magic,
		Kind:        KindSpriteSheet,
		Major:       VersionMajor,
		Minor:       VersionMinor,
		Sprites:     uint32(len(sprites)),
		Anims:       uint32(len(anims)),
		NameSize:    uint32(names.Len()),
		NameOffset:  uint32(tables),
		Width:       uint32(s.Atlas.Width),
		Height:      uint32(s.Atlas.Height),
		AtlasOffset: uint32(tables) + uint32(names.Len()),
		Channels:    uint8(s.Atlas.Channels),
		Depth:       uint8(s.Atlas.Depth),
	}
	copy(h.Format[:], f.Tag())

	out := bytes.NewBuffer(make([]byte, 0, int(h.AtlasOffset)+len(payload)))
	// Writes to a bytes.Buffer cannot fail.
	_ = binary.Write(out, order, &h)
	_ = binary.Write(out, order, sprites)
	_ = binary.Write(out, order, anims)
	out.Write(names.Bytes())
	out.Write(payload)
	return out.Bytes(), nil
}

// DecodeFrom reads a whole sheet from r.
func DecodeFrom(r io.Reader) (*SpriteSheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, chima.Wrap(chima.FileOpenFailure, "sheet.DecodeFrom", err)
	}
	return Decode(data)
}

// Decode parses a serialized sheet. Magic, kind and version are checked
// before any size field is trusted. Input shorter than a declared table is
// reported as TruncatedFile.
func Decode(data []byte) (*SpriteSheet, error) {
	const op = "sheet.Decode"
	if len(data) < len(Magic) {
		if bytes.HasPrefix(Magic[:], data) {
			return nil, chima.Errorf(chima.TruncatedFile, op, "%d byte file ends inside the magic", len(data))
		}
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "not a chima asset")
	}
	if !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "not a chima asset")
	}
	if len(data) < HeaderSize {
		return nil, chima.Errorf(chima.TruncatedFile, op, "header needs %d bytes, have %d", HeaderSize, len(data))
	}
	var h header
	_ = binary.Read(bytes.NewReader(data[:HeaderSize]), order, &h)
	if h.Kind != KindSpriteSheet {
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "asset kind %d is not a sprite sheet", h.Kind)
	}
	if h.Major != VersionMajor {
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "version %d.%d, need %d.x", h.Major, h.Minor, VersionMajor)
	}

	tables := uint64(HeaderSize) + spriteRecSize*uint64(h.Sprites) + animRecSize*uint64(h.Anims)
	if uint64(h.NameOffset) != tables {
		return nil, chima.Errorf(chima.DecodeFailure, op, "name pool at %d, tables end at %d", h.NameOffset, tables)
	}
	if uint64(len(data)) < tables {
		return nil, chima.Errorf(chima.TruncatedFile, op, "tables need %d bytes, have %d", tables, len(data))
	}
	if uint64(h.AtlasOffset) != uint64(h.NameOffset)+uint64(h.NameSize) {
		return nil, chima.Errorf(chima.DecodeFailure, op, "atlas at %d, name pool ends at %d",
			h.AtlasOffset, uint64(h.NameOffset)+uint64(h.NameSize))
	}
	if uint64(len(data)) < uint64(h.AtlasOffset) {
		return nil, chima.Errorf(chima.TruncatedFile, op, "name pool needs %d bytes, have %d", h.AtlasOffset, len(data))
	}

	format, err := imgcodec.ParseFormat(string(bytes.TrimRight(h.Format[:], "\x00")))
	if err != nil {
		return nil, err
	}
	depth := pixbuf.Depth(h.Depth)
	if !depth.Valid() {
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "atlas depth %d", h.Depth)
	}
	if h.Channels < 1 || h.Channels > 4 || h.Width == 0 || h.Height == 0 {
		return nil, chima.Errorf(chima.DecodeFailure, op, "atlas is %dx%d with %d channels", h.Width, h.Height, h.Channels)
	}

	sprites := make([]spriteRec, h.Sprites)
	anims := make([]animRec, h.Anims)
	r := bytes.NewReader(data[HeaderSize:h.NameOffset])
	_ = binary.Read(r, order, sprites)
	_ = binary.Read(r, order, anims)
	pool := data[h.NameOffset:h.AtlasOffset]
	name := func(off, n uint32) (string, bool) {
		if uint64(off)+uint64(n) > uint64(len(pool)) {
			return "", false
		}
		return string(pool[off : off+n]), true
	}

	s := &SpriteSheet{
		Sprites:    make([]Sprite, len(sprites)),
		Animations: make([]SpriteAnimation, len(anims)),
	}
	for i, rec := range sprites {
		n, ok := name(rec.NameOff, rec.NameLen)
		if !ok {
			return nil, chima.Errorf(chima.DecodeFailure, op, "sprite %d name lies outside the name pool", i)
		}
		if uint64(rec.X)+uint64(rec.W) > uint64(h.Width) || uint64(rec.Y)+uint64(rec.H) > uint64(h.Height) {
			return nil, chima.Errorf(chima.DecodeFailure, op, "sprite %d %q lies outside the atlas", i, n)
		}
		s.Sprites[i] = Sprite{
			Rect:     Rect{X: rec.X, Y: rec.Y, Width: rec.W, Height: rec.H},
			Name:     n,
			Duration: rec.Duration,
		}
	}
	for i, rec := range anims {
		n, ok := name(rec.NameOff, rec.NameLen)
		if !ok {
			return nil, chima.Errorf(chima.DecodeFailure, op, "animation %d name lies outside the name pool", i)
		}
		if uint64(rec.Start)+uint64(rec.Count) > uint64(h.Sprites) {
			return nil, chima.Errorf(chima.DecodeFailure, op, "animation %d %q references missing sprites", i, n)
		}
		s.Animations[i] = SpriteAnimation{Name: n, Start: rec.Start, Count: rec.Count}
	}

	atlas, err := imgcodec.DecodePayload(format, data[h.AtlasOffset:],
		int(h.Width), int(h.Height), int(h.Channels), depth)
	if err != nil {
		return nil, err
	}
	s.Atlas = atlas
	return s, nil
}

// Write encodes s and replaces path with it. The data goes to a pending
// file that is renamed into place, so path is either the old file or the
// complete new one.
func Write(path string, s *SpriteSheet, f imgcodec.Format) error {
	const op = "sheet.Write"
	data, err := Encode(s, f)
	if err != nil {
		return err
	}
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return chima.Wrap(chima.FileOpenFailure, op, err)
	}
	defer pf.Cleanup()
	if _, err := pf.Write(data); err != nil {
		return chima.Wrap(chima.FileWriteFailure, op, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return chima.Wrap(chima.FileWriteFailure, op, err)
	}
	return nil
}

// Load reads and decodes the sheet stored at path.
func Load(path string) (*SpriteSheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, chima.Wrap(chima.FileOpenFailure, "sheet.Load", err)
	}
	return Decode(data)
}
