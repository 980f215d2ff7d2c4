package pixbuf

import "chimatools/chima"

// colorChannels is the number of non-alpha channels. Only four channel
// images carry alpha.
func (img *Image) colorChannels() int {
	if img.Channels == 4 {
		return 3
	}
	return img.Channels
}

// Composite alpha blends src over dst with src's top-left corner at (x, y).
// The covered region is clipped to dst; pixels that fall outside are
// dropped without error. Both images must share a depth class. A grey
// source fills every colour channel of dst; an RGB source written into a
// grey dst contributes its luma.
func Composite(dst, src *Image, x, y int) error {
	const op = "pixbuf.Composite"
	if dst == nil || src == nil || dst.Released() || src.Released() {
		return chima.Errorf(chima.InvalidArgument, op, "nil image")
	}
	if dst.Depth != src.Depth {
		return chima.Errorf(chima.InvalidArgument, op,
			"cannot composite %v onto %v", src.Depth, dst.Depth)
	}
	if x < 0 || y < 0 {
		return chima.Errorf(chima.InvalidArgument, op, "negative offset (%d, %d)", x, y)
	}

	w := min(src.Width, dst.Width-x)
	h := min(src.Height, dst.Height-y)
	if w <= 0 || h <= 0 {
		return nil
	}

	full := dst.Depth.Max()
	srcColors := src.colorChannels()
	dstColors := dst.colorChannels()
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			sp := src.Offset(col, row)
			dp := dst.Offset(x+col, y+row)

			sa := float32(1)
			if src.Channels == 4 {
				sa = src.raw(sp+3) / full
			}
			if sa == 0 {
				continue
			}
			da := float32(1)
			if dst.Channels == 4 {
				da = dst.raw(dp+3) / full
			}
			oa := sa + da*(1-sa)
			for c := 0; c < dstColors; c++ {
				var sv float32
				if dstColors == 1 && srcColors >= 3 {
					sv = luma(src.raw(sp), src.raw(sp+1), src.raw(sp+2))
				} else {
					sv = src.raw(sp + min(c, srcColors-1))
				}
				blend := dst.raw(dp+c)*da*(1-sa) + sv*sa
				dst.setRaw(dp+c, blend/oa)
			}
			if dst.Channels == 4 {
				dst.setRaw(dp+3, oa*full)
			}
		}
	}
	return nil
}
