package sheet

// Flip selects mirrored axes for UVTransform.
type Flip uint8

const (
	FlipX Flip = 1 << iota
	FlipY
)

// UV maps a sprite-local texture coordinate in [0,1] to atlas coordinates:
// u = XLin*u_local + XCon, v = YLin*v_local + YCon.
type UV struct {
	XLin, XCon float32
	YLin, YCon float32
}

// Apply maps a local coordinate.
func (t UV) Apply(u, v float32) (float32, float32) {
	return t.XLin*u + t.XCon, t.YLin*v + t.YCon
}

func axis(size, pos, extent uint32, flip bool) (lin, con float32) {
	lin = float32(extent) / float32(size)
	con = float32(pos) / float32(size)
	if flip {
		return -lin, 1 - con
	}
	return lin, con
}

// UVTransform returns the affine map placing r inside a w×h atlas.
func UVTransform(w, h uint32, r Rect, flip Flip) UV {
	var t UV
	t.XLin, t.XCon = axis(w, r.X, r.Width, flip&FlipX != 0)
	t.YLin, t.YCon = axis(h, r.Y, r.Height, flip&FlipY != 0)
	return t
}

// UV returns the transform of sprite i.
func (s *SpriteSheet) UV(i int, flip Flip) UV {
	return UVTransform(uint32(s.Atlas.Width), uint32(s.Atlas.Height), s.Sprites[i].Rect, flip)
}
