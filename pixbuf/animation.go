package pixbuf

import "chimatools/chima"

// DefaultDuration is the frame time given to frames without an explicit one.
const DefaultDuration = 1

// Animation is an ordered run of frames sharing channel count and depth.
// Frames may differ in size. Durations are per frame, in milliseconds when
// the frames came from a GIF.
type Animation struct {
	Frames    []*Image
	Durations []uint32
}

// NewAnimation validates frames and durations. A nil durations slice gives
// every frame DefaultDuration.
func NewAnimation(frames []*Image, durations []uint32) (*Animation, error) {
	const op = "pixbuf.NewAnimation"
	if len(frames) == 0 {
		return nil, chima.Errorf(chima.InvalidArgument, op, "animation has no frames")
	}
	if durations != nil && len(durations) != len(frames) {
		return nil, chima.Errorf(chima.InvalidArgument, op,
			"%d durations for %d frames", len(durations), len(frames))
	}
	for i, f := range frames {
		if f == nil || f.Released() {
			return nil, chima.Errorf(chima.InvalidArgument, op, "frame %d is empty", i)
		}
		if f.Channels != frames[0].Channels || f.Depth != frames[0].Depth {
			return nil, chima.Errorf(chima.InvalidArgument, op,
				"frame %d is %dch/%v, frame 0 is %dch/%v",
				i, f.Channels, f.Depth, frames[0].Channels, frames[0].Depth)
		}
	}
	if durations == nil {
		durations = make([]uint32, len(frames))
		for i := range durations {
			durations[i] = DefaultDuration
		}
	}
	return &Animation{Frames: frames, Durations: durations}, nil
}

// Duration returns the frame time of frame i.
func (a *Animation) Duration(i int) uint32 {
	if i < len(a.Durations) {
		return a.Durations[i]
	}
	return DefaultDuration
}

// Release releases every frame.
func (a *Animation) Release() {
	if a == nil {
		return
	}
	for _, f := range a.Frames {
		f.Release()
	}
	a.Frames = nil
	a.Durations = nil
}
