package preview

import (
	pixel "github.com/gopxl/pixel/v2"

	"chimatools/sheet"
)

// MinFrameTime is the shortest time, in seconds, a frame stays on screen.
// Sheet durations are milliseconds; anything shorter is raised to this.
const MinFrameTime = 1.0 / 60

// Player steps through the clips of a sheet.
type Player struct {
	clips   []Clip
	current int
	frame   int
	counter float64
}

// NewPlayer returns a player positioned on the first clip by name.
func NewPlayer(s *sheet.SpriteSheet) *Player {
	return &Player{clips: Clips(s)}
}

func frameTime(ms uint32) float64 {
	t := float64(ms) / 1000
	if t < MinFrameTime {
		return MinFrameTime
	}
	return t
}

// Update advances playback by dt seconds, looping at the end of the clip.
func (p *Player) Update(dt float64) {
	if len(p.clips) == 0 {
		return
	}
	c := p.clips[p.current]
	p.counter += dt
	for {
		d := frameTime(c.Durations[p.frame])
		if p.counter < d {
			return
		}
		p.counter -= d
		p.frame = (p.frame + 1) % len(c.Frames)
	}
}

// Frame returns the rect of the frame on screen.
func (p *Player) Frame() pixel.Rect {
	if len(p.clips) == 0 {
		return pixel.Rect{}
	}
	return p.clips[p.current].Frames[p.frame]
}

// FrameIndex returns the position of the current frame within its clip.
func (p *Player) FrameIndex() int { return p.frame }

// Name returns the name of the current clip.
func (p *Player) Name() string {
	if len(p.clips) == 0 {
		return ""
	}
	return p.clips[p.current].Name
}

// Names lists every clip in playback order.
func (p *Player) Names() []string {
	names := make([]string, len(p.clips))
	for i, c := range p.clips {
		names[i] = c.Name
	}
	return names
}

func (p *Player) jump(i int) {
	p.current = i
	p.frame = 0
	p.counter = 0
}

// Select switches to the named clip. It reports false, leaving playback
// alone, when there is no such clip.
func (p *Player) Select(name string) bool {
	for i, c := range p.clips {
		if c.Name == name {
			p.jump(i)
			return true
		}
	}
	return false
}

// Next switches to the following clip, wrapping around.
func (p *Player) Next() {
	if len(p.clips) > 0 {
		p.jump((p.current + 1) % len(p.clips))
	}
}

// Prev switches to the preceding clip, wrapping around.
func (p *Player) Prev() {
	if len(p.clips) > 0 {
		p.jump((p.current + len(p.clips) - 1) % len(p.clips))
	}
}
