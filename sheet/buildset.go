package sheet

import (
	"fmt"

	"chimatools/chima"
	"chimatools/pixbuf"
)

// MaxNameLen is the longest sprite or animation name a set accepts.
const MaxNameLen = 255

const (
	imagePrefix = "chima_image"
	animPrefix  = "chima_anim"
)

type imageEntry struct {
	img      *pixbuf.Image
	name     string
	duration uint32
}

type animEntry struct {
	anim *pixbuf.Animation
	name string
}

// BuildSet collects the images and animations of one sheet, in insertion
// order. The zero value is ready to use. A set borrows its images; it never
// modifies or releases them.
type BuildSet struct {
	images []imageEntry
	anims  []animEntry
}

// NewBuildSet returns an empty set.
func NewBuildSet() *BuildSet {
	return &BuildSet{}
}

// Len returns the number of sprites the set flattens into.
func (s *BuildSet) Len() int {
	n := len(s.images)
	for _, a := range s.anims {
		n += len(a.anim.Frames)
	}
	return n
}

// ImageCount returns the number of standalone images.
func (s *BuildSet) ImageCount() int { return len(s.images) }

// AnimationCount returns the number of animations.
func (s *BuildSet) AnimationCount() int { return len(s.anims) }

func checkName(op, name string) error {
	if len(name) > MaxNameLen {
		return chima.Errorf(chima.InvalidArgument, op, "name %.16q... is %d bytes, limit is %d", name, len(name), MaxNameLen)
	}
	return nil
}

func checkImage(op string, img *pixbuf.Image) error {
	if img == nil || img.Released() {
		return chima.Errorf(chima.InvalidArgument, op, "empty image")
	}
	return nil
}

// AddImage adds img with the default duration. An empty name is replaced by
// chima_image.NNNNN, NNNNN being the number of images already in the set.
func (s *BuildSet) AddImage(img *pixbuf.Image, name string) error {
	return s.AddImageDuration(img, name, pixbuf.DefaultDuration)
}

// AddImageDuration adds img with an explicit frame time.
func (s *BuildSet) AddImageDuration(img *pixbuf.Image, name string, duration uint32) error {
	const op = "sheet.AddImage"
	if err := checkImage(op, img); err != nil {
		return err
	}
	if name == "" {
		name = fmt.Sprintf("%s.%05d", imagePrefix, len(s.images))
	}
	if err := checkName(op, name); err != nil {
		return err
	}
	s.images = append(s.images, imageEntry{img: img, name: name, duration: duration})
	return nil
}

// AddImages adds a batch of images. With a basename, image i is named
// basename.NNNNN by its batch position; otherwise each one gets the
// automatic name. Nil durations default every image. Nothing is added when
// any image is rejected.
func (s *BuildSet) AddImages(imgs []*pixbuf.Image, durations []uint32, basename string) error {
	const op = "sheet.AddImages"
	if len(imgs) == 0 {
		return chima.Errorf(chima.InvalidArgument, op, "no images")
	}
	if durations != nil && len(durations) != len(imgs) {
		return chima.Errorf(chima.InvalidArgument, op, "%d durations for %d images", len(durations), len(imgs))
	}
	entries := make([]imageEntry, len(imgs))
	for i, img := range imgs {
		if err := checkImage(op, img); err != nil {
			return chima.Wrap(chima.InvalidArgument, fmt.Sprintf("%s: image %d", op, i), err)
		}
		e := imageEntry{img: img, duration: pixbuf.DefaultDuration}
		if durations != nil {
			e.duration = durations[i]
		}
		if basename != "" {
			e.name = fmt.Sprintf("%s.%05d", basename, i)
		} else {
			e.name = fmt.Sprintf("%s.%05d", imagePrefix, len(s.images)+i)
		}
		if err := checkName(op, e.name); err != nil {
			return err
		}
		entries[i] = e
	}
	s.images = append(s.images, entries...)
	return nil
}

// AddAnimation adds anim. An empty name is replaced by chima_anim.NNNNN.
// Frame i becomes the sprite name.NNNNN.
func (s *BuildSet) AddAnimation(anim *pixbuf.Animation, name string) error {
	const op = "sheet.AddAnimation"
	if anim == nil || len(anim.Frames) == 0 {
		return chima.Errorf(chima.InvalidArgument, op, "empty animation")
	}
	for i, f := range anim.Frames {
		if err := checkImage(op, f); err != nil {
			return chima.Wrap(chima.InvalidArgument, fmt.Sprintf("%s: frame %d", op, i), err)
		}
	}
	if name == "" {
		name = fmt.Sprintf("%s.%05d", animPrefix, len(s.anims))
	}
	// Frame names append ".NNNNN" to the animation name.
	if err := checkName(op, name+".00000"); err != nil {
		return err
	}
	s.anims = append(s.anims, animEntry{anim: anim, name: name})
	return nil
}

type flatSprite struct {
	img      *pixbuf.Image
	name     string
	duration uint32
}

// flatten lists standalone images first, then every animation's frames.
func (s *BuildSet) flatten() []flatSprite {
	out := make([]flatSprite, 0, s.Len())
	for _, e := range s.images {
		out = append(out, flatSprite{img: e.img, name: e.name, duration: e.duration})
	}
	for _, a := range s.anims {
		for i, f := range a.anim.Frames {
			out = append(out, flatSprite{
				img:      f,
				name:     fmt.Sprintf("%s.%05d", a.name, i),
				duration: a.anim.Duration(i),
			})
		}
	}
	return out
}
