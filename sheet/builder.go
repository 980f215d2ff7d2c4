package sheet

import (
	"fmt"

	"chimatools/chima"
	"chimatools/pack"
	"chimatools/pixbuf"
)

// Options controls Build. Options are only read during a build.
type Options struct {
	// Padding is added to the width and height of every packed rect.
	Padding int
	// Background fills the atlas before sprites are drawn.
	Background pixbuf.Color
	Pack       pack.Options
	// Packer defaults to pack.BinPacker when nil.
	Packer pack.Packer
	// Logf, when set, receives progress messages.
	Logf func(format string, args ...interface{})
}

// DefaultOptions returns no padding, a transparent background and the
// default packing parameters.
func DefaultOptions() Options {
	return Options{
		Background: pixbuf.Transparent,
		Pack:       pack.DefaultOptions(),
		Packer:     pack.BinPacker{},
	}
}

func (o Options) logf(format string, args ...interface{}) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Build packs every image and animation frame of set into one atlas.
// Standalone images come first in the sprite table, followed by each
// animation's frames. All sprites must share channel count and depth. On
// error no sheet is returned.
func Build(set *BuildSet, opts Options) (sheet *SpriteSheet, err error) {
	const op = "sheet.Build"
	if set == nil || set.Len() == 0 {
		return nil, chima.Errorf(chima.InvalidArgument, op, "nothing to build")
	}
	if opts.Padding < 0 {
		return nil, chima.Errorf(chima.InvalidArgument, op, "negative padding %d", opts.Padding)
	}
	packer := opts.Packer
	if packer == nil {
		packer = pack.BinPacker{}
	}

	sprites := set.flatten()
	first := sprites[0].img
	rects := make([]pack.Size, len(sprites))
	for i, s := range sprites {
		if s.img.Channels != first.Channels || s.img.Depth != first.Depth {
			return nil, chima.Errorf(chima.InvalidArgument, op,
				"sprite %d %q is %dch/%v, expected %dch/%v",
				i, s.name, s.img.Channels, s.img.Depth, first.Channels, first.Depth)
		}
		rects[i] = pack.Size{W: s.img.Width + opts.Padding, H: s.img.Height + opts.Padding}
	}

	res, err := pack.Pack(packer, rects, opts.Pack)
	if err != nil {
		return nil, err
	}
	opts.logf("packed %d sprites into %dx%d after %d attempts %v",
		len(sprites), res.Size, res.Size, len(res.Attempts), res.Attempts)

	atlas, err := pixbuf.New(res.Size, res.Size, first.Channels, first.Depth, opts.Background)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			atlas.Release()
		}
	}()

	out := &SpriteSheet{
		Atlas:      atlas,
		Sprites:    make([]Sprite, len(sprites)),
		Animations: make([]SpriteAnimation, 0, len(set.anims)),
	}
	for i, s := range sprites {
		p := res.Places[i]
		if err := pixbuf.Composite(atlas, s.img, p.X, p.Y); err != nil {
			return nil, chima.Wrap(chima.InvalidArgument, fmt.Sprintf("%s: composite sprite %d", op, i), err)
		}
		out.Sprites[i] = Sprite{
			Rect: Rect{
				X:      uint32(p.X),
				Y:      uint32(p.Y),
				Width:  uint32(s.img.Width),
				Height: uint32(s.img.Height),
			},
			Name:     s.name,
			Duration: s.duration,
		}
	}

	start := len(set.images)
	for _, a := range set.anims {
		n := len(a.anim.Frames)
		out.Animations = append(out.Animations, SpriteAnimation{
			Name:  a.name,
			Start: uint32(start),
			Count: uint32(n),
		})
		start += n
	}
	return out, nil
}
