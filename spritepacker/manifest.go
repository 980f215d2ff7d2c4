package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"chimatools/pixbuf"
)

// manifest describes a sheet build in YAML. Every scalar field is optional
// and only replaces the matching flag when that flag was not given.
type manifest struct {
	Output     string  `yaml:"output"`
	Format     string  `yaml:"format"`
	Padding    *int    `yaml:"padding"`
	Background string  `yaml:"background"`
	Initial    int     `yaml:"initial"`
	Grow       float64 `yaml:"grow"`
	Max        int     `yaml:"max"`
	Depth      int     `yaml:"depth"`
	Channels   int     `yaml:"channels"`
	FlipY      bool    `yaml:"flip_y"`

	Images     []manifestImage     `yaml:"images"`
	Animations []manifestAnimation `yaml:"animations"`

	dir string
}

type manifestImage struct {
	File     string `yaml:"file"`
	Name     string `yaml:"name"`
	Duration uint32 `yaml:"duration"`
}

// manifestAnimation is either a multi-frame GIF file or a list of frame
// images. Durations, when given, replace the GIF delays.
type manifestAnimation struct {
	Name      string   `yaml:"name"`
	File      string   `yaml:"file"`
	Frames    []string `yaml:"frames"`
	Durations []uint32 `yaml:"durations"`
}

func loadManifest(path string) (m *manifest, err error) {
	defer func() {
		if err != nil {
			err = errors.Wrapf(err, "error reading manifest %s", path)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m = &manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)

	for i, img := range m.Images {
		if img.File == "" {
			return nil, errors.Errorf("image %d has no file", i)
		}
	}
	for i, a := range m.Animations {
		switch {
		case a.File == "" && len(a.Frames) == 0:
			return nil, errors.Errorf("animation %d %q has neither file nor frames", i, a.Name)
		case a.File != "" && len(a.Frames) > 0:
			return nil, errors.Errorf("animation %d %q has both file and frames", i, a.Name)
		case a.File == "" && a.Durations != nil && len(a.Durations) != len(a.Frames):
			return nil, errors.Errorf("animation %d %q has %d durations for %d frames", i, a.Name, len(a.Durations), len(a.Frames))
		}
	}
	return m, nil
}

// resolve makes a manifest path relative to the manifest's directory.
func (m *manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir, path)
}

// parseColor accepts "transparent", a colornames name, #rrggbb or #rrggbbaa.
func parseColor(s string) (pixbuf.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "transparent" {
		return pixbuf.Transparent, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return pixbuf.ColorFrom(c), nil
	}
	if strings.HasPrefix(s, "#") && (len(s) == 7 || len(s) == 9) {
		rgb, err := colorful.Hex(s[:7])
		if err != nil {
			return pixbuf.Color{}, errors.Wrapf(err, "unknown color %q", s)
		}
		c := pixbuf.Color{R: float32(rgb.R), G: float32(rgb.G), B: float32(rgb.B), A: 1}
		if len(s) == 9 {
			a, err := strconv.ParseUint(s[7:], 16, 8)
			if err != nil {
				return pixbuf.Color{}, errors.Wrapf(err, "unknown color %q", s)
			}
			c.A = float32(a) / 255
		}
		return c, nil
	}
	return pixbuf.Color{}, errors.Errorf("unknown color %q", s)
}
