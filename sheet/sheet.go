// Package sheet packs images and animations into a single atlas and reads
// and writes the resulting sprite sheets.
package sheet

import (
	"chimatools/chima"
	"chimatools/pixbuf"
)

// Rect is a region of the atlas, origin at the top-left.
type Rect struct {
	X, Y          uint32
	Width, Height uint32
}

func (r Rect) overlaps(o Rect) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Sprite is a named region of the atlas.
type Sprite struct {
	Rect
	Name     string
	Duration uint32
}

// SpriteAnimation names a contiguous run of sprites.
type SpriteAnimation struct {
	Name  string
	Start uint32
	Count uint32
}

// SpriteSheet is an atlas together with its sprite and animation tables.
type SpriteSheet struct {
	Atlas      *pixbuf.Image
	Sprites    []Sprite
	Animations []SpriteAnimation
}

// Validate checks that every sprite lies inside the atlas, that sprites do
// not overlap and that every animation references existing sprites.
func (s *SpriteSheet) Validate() error {
	const op = "sheet.Validate"
	if s.Atlas == nil || s.Atlas.Released() {
		return chima.Errorf(chima.InvalidArgument, op, "sheet has no atlas")
	}
	w, h := uint64(s.Atlas.Width), uint64(s.Atlas.Height)
	for i, sp := range s.Sprites {
		if sp.Width == 0 || sp.Height == 0 {
			return chima.Errorf(chima.InvalidArgument, op, "sprite %d %q is empty", i, sp.Name)
		}
		if uint64(sp.X)+uint64(sp.Width) > w || uint64(sp.Y)+uint64(sp.Height) > h {
			return chima.Errorf(chima.InvalidArgument, op, "sprite %d %q lies outside the %dx%d atlas", i, sp.Name, w, h)
		}
		for j := i + 1; j < len(s.Sprites); j++ {
			if sp.overlaps(s.Sprites[j].Rect) {
				return chima.Errorf(chima.InvalidArgument, op, "sprites %d and %d overlap", i, j)
			}
		}
	}
	for i, a := range s.Animations {
		if uint64(a.Start)+uint64(a.Count) > uint64(len(s.Sprites)) {
			return chima.Errorf(chima.InvalidArgument, op,
				"animation %d %q covers sprites [%d,%d) of %d", i, a.Name, a.Start, uint64(a.Start)+uint64(a.Count), len(s.Sprites))
		}
	}
	return nil
}

// Sprite looks a sprite up by name.
func (s *SpriteSheet) Sprite(name string) (Sprite, bool) {
	for _, sp := range s.Sprites {
		if sp.Name == name {
			return sp, true
		}
	}
	return Sprite{}, false
}

// Animation looks an animation up by name.
func (s *SpriteSheet) Animation(name string) (SpriteAnimation, bool) {
	for _, a := range s.Animations {
		if a.Name == name {
			return a, true
		}
	}
	return SpriteAnimation{}, false
}

// Frames returns the sprites of a, or nil when a is out of range.
func (s *SpriteSheet) Frames(a SpriteAnimation) []Sprite {
	end := uint64(a.Start) + uint64(a.Count)
	if end > uint64(len(s.Sprites)) {
		return nil
	}
	return s.Sprites[a.Start:end]
}

// Release drops the atlas and the tables.
func (s *SpriteSheet) Release() {
	if s == nil {
		return
	}
	s.Atlas.Release()
	s.Atlas = nil
	s.Sprites = nil
	s.Animations = nil
}
