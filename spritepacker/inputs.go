package main

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"chimatools/imgcodec"
	"chimatools/pixbuf"
	"chimatools/sheet"
)

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true, ".webp": true, ".tga": true,
}

// loader reads input files and converts them to one channel count and depth,
// optionally flipping them upside down.
type loader struct {
	channels int
	depth    pixbuf.Depth
	flipY    bool
	autoname bool
	verbose  bool
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (l *loader) convert(img *pixbuf.Image) (*pixbuf.Image, error) {
	if img.Channels != l.channels || img.Depth != l.depth {
		var err error
		if img, err = img.Convert(l.channels, l.depth); err != nil {
			return nil, err
		}
	}
	if l.flipY {
		img.FlipY()
	}
	return img, nil
}

func (l *loader) image(path string) (*pixbuf.Image, error) {
	img, err := imgcodec.Load(path, l.depth)
	if err != nil {
		return nil, err
	}
	return l.convert(img)
}

func (l *loader) animation(path string) (*pixbuf.Animation, error) {
	anim, err := imgcodec.LoadAnimation(path, l.depth)
	if err != nil {
		return nil, err
	}
	for i, f := range anim.Frames {
		if anim.Frames[i], err = l.convert(f); err != nil {
			return nil, err
		}
	}
	return anim, nil
}

func (l *loader) name(n string) string {
	if l.autoname {
		return ""
	}
	return n
}

// expand lists the image files named by args. Directories contribute their
// image files, sorted, without descending further.
func expand(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// addFile adds one input. GIFs with several frames become an animation
// named after the file; everything else a single sprite.
func (l *loader) addFile(set *sheet.BuildSet, path string) (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrapf(err, "error adding %s", path)
		}
	}()

	if strings.EqualFold(filepath.Ext(path), ".gif") {
		anim, err := l.animation(path)
		if err != nil {
			return err
		}
		if len(anim.Frames) > 1 {
			if l.verbose {
				log.Printf("%s: animation with %d frames", path, len(anim.Frames))
			}
			return set.AddAnimation(anim, l.name(baseName(path)))
		}
		return set.AddImageDuration(anim.Frames[0], l.name(baseName(path)), anim.Duration(0))
	}
	img, err := l.image(path)
	if err != nil {
		return err
	}
	if l.verbose {
		log.Printf("%s: %dx%d", path, img.Width, img.Height)
	}
	return set.AddImage(img, l.name(baseName(path)))
}

// addManifest adds the images and animations listed in m.
func (l *loader) addManifest(set *sheet.BuildSet, m *manifest) error {
	for _, e := range m.Images {
		img, err := l.image(m.resolve(e.File))
		if err != nil {
			return errors.Wrapf(err, "error adding %s", e.File)
		}
		name := e.Name
		if name == "" {
			name = baseName(e.File)
		}
		d := e.Duration
		if d == 0 {
			d = pixbuf.DefaultDuration
		}
		if err := set.AddImageDuration(img, l.name(name), d); err != nil {
			return errors.Wrapf(err, "error adding %s", e.File)
		}
	}
	for _, a := range m.Animations {
		anim, err := l.manifestAnimation(m, a)
		if err != nil {
			return errors.Wrapf(err, "error adding animation %q", a.Name)
		}
		if err := set.AddAnimation(anim, l.name(a.Name)); err != nil {
			return errors.Wrapf(err, "error adding animation %q", a.Name)
		}
	}
	return nil
}

func (l *loader) manifestAnimation(m *manifest, a manifestAnimation) (*pixbuf.Animation, error) {
	if a.File != "" {
		anim, err := l.animation(m.resolve(a.File))
		if err != nil || a.Durations == nil {
			return anim, err
		}
		if len(a.Durations) != len(anim.Frames) {
			return nil, errors.Errorf("%s has %d frames, durations lists %d",
				a.File, len(anim.Frames), len(a.Durations))
		}
		return pixbuf.NewAnimation(anim.Frames, a.Durations)
	}
	frames := make([]*pixbuf.Image, len(a.Frames))
	for i, f := range a.Frames {
		img, err := l.image(m.resolve(f))
		if err != nil {
			return nil, err
		}
		frames[i] = img
	}
	return pixbuf.NewAnimation(frames, a.Durations)
}
