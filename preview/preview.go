// Package preview turns sprite sheets into pixel pictures and frame
// rectangles, and plays their animations back.
package preview

import (
	"sort"

	pixel "github.com/gopxl/pixel/v2"
	"github.com/pkg/errors"

	"chimatools/sheet"
)

// Picture uploads the atlas of s into a pixel picture.
func Picture(s *sheet.SpriteSheet) *pixel.PictureData {
	return pixel.PictureDataFromImage(s.Atlas.ToImage())
}

// FrameRect converts the top-left based rect of sp into pixel's bottom-left
// coordinates.
func FrameRect(s *sheet.SpriteSheet, sp sheet.Sprite) pixel.Rect {
	h := float64(s.Atlas.Height)
	return pixel.R(
		float64(sp.X),
		h-float64(sp.Y)-float64(sp.Height),
		float64(sp.X)+float64(sp.Width),
		h-float64(sp.Y),
	)
}

// Clip is one playable run of frames.
type Clip struct {
	Name      string
	Frames    []pixel.Rect
	Durations []uint32
}

// Clips lists every animation of s plus every sprite that belongs to no
// animation as a single frame clip, sorted by name.
func Clips(s *sheet.SpriteSheet) []Clip {
	owned := make([]bool, len(s.Sprites))
	var clips []Clip
	for _, a := range s.Animations {
		c := Clip{Name: a.Name}
		for i, sp := range s.Frames(a) {
			owned[int(a.Start)+i] = true
			c.Frames = append(c.Frames, FrameRect(s, sp))
			c.Durations = append(c.Durations, sp.Duration)
		}
		if len(c.Frames) > 0 {
			clips = append(clips, c)
		}
	}
	for i, sp := range s.Sprites {
		if owned[i] {
			continue
		}
		clips = append(clips, Clip{
			Name:      sp.Name,
			Frames:    []pixel.Rect{FrameRect(s, sp)},
			Durations: []uint32{sp.Duration},
		})
	}
	sort.SliceStable(clips, func(i, j int) bool { return clips[i].Name < clips[j].Name })
	return clips
}

// AnimationFrames maps every clip name to its frame rects.
func AnimationFrames(s *sheet.SpriteSheet) map[string][]pixel.Rect {
	anims := make(map[string][]pixel.Rect)
	for _, c := range Clips(s) {
		anims[c.Name] = c.Frames
	}
	return anims
}

// LoadSheet reads a sheet file and prepares its picture and frames.
func LoadSheet(path string) (s *sheet.SpriteSheet, pic *pixel.PictureData, anims map[string][]pixel.Rect, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrapf(err, "error loading sprite sheet %s", path)
		}
	}()

	s, err = sheet.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	if err = s.Validate(); err != nil {
		return nil, nil, nil, err
	}
	return s, Picture(s), AnimationFrames(s), nil
}
