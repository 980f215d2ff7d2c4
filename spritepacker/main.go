// Command spritepacker packs images and GIF animations into a chima sprite
// sheet, or prints the tables of an existing sheet.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pkg/errors"

	"chimatools/imgcodec"
	"chimatools/pack"
	"chimatools/pixbuf"
	"chimatools/sheet"
)

const usage = `Usage:
  spritepacker [flags] inputs...
  spritepacker [flags] -manifest sheet.yaml
  spritepacker -inspect sheet.chima [-flipx] [-flipy]

Inputs are image files or directories of image files. Multi-frame GIFs
become animations named after the file.

Flags:
`

type config struct {
	output     string
	format     string
	padding    int
	background string
	initial    int
	grow       float64
	max        int
	depth      int
	channels   int
	autoname   bool
	flipYLoad  bool
	png        string
	manifest   string
	inspect    string
	flipX      bool
	flipY      bool
	verbose    bool

	set map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*config, []string, error) {
	cfg := &config{set: make(map[string]bool)}
	fs := flag.NewFlagSet("spritepacker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	defaults := pack.DefaultOptions()
	fs.StringVar(&cfg.output, "o", "sheet.chima", "output sheet path")
	fs.StringVar(&cfg.format, "format", "png", "atlas format: raw, zstd, png, bmp, tga or tiff")
	fs.IntVar(&cfg.padding, "padding", 0, "pixels reserved right and below every sprite")
	fs.StringVar(&cfg.background, "bg", "transparent", "atlas background: a color name, #rrggbb[aa] or transparent")
	fs.IntVar(&cfg.initial, "initial", defaults.Initial, "first atlas side tried")
	fs.Float64Var(&cfg.grow, "grow", float64(defaults.Growth), "atlas growth factor after a failed attempt")
	fs.IntVar(&cfg.max, "max", defaults.Max, "largest atlas side tried")
	fs.IntVar(&cfg.depth, "depth", 8, "bits per channel: 8, 16 or 32 (float)")
	fs.IntVar(&cfg.channels, "channels", 4, "channels per pixel, 1 to 4; inputs are converted")
	fs.BoolVar(&cfg.autoname, "autoname", false, "ignore file names and number sprites instead")
	fs.BoolVar(&cfg.flipYLoad, "flipy-load", false, "flip every input image upside down as it is loaded")
	fs.StringVar(&cfg.png, "png", "", "also write the atlas to this PNG file")
	fs.StringVar(&cfg.manifest, "manifest", "", "YAML manifest describing the sheet")
	fs.StringVar(&cfg.inspect, "inspect", "", "print the tables of this sheet and exit")
	fs.BoolVar(&cfg.flipX, "flipx", false, "inspect: print UV transforms flipped horizontally")
	fs.BoolVar(&cfg.flipY, "flipy", false, "inspect: print UV transforms flipped vertically")
	fs.BoolVar(&cfg.verbose, "v", false, "log progress")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
	return cfg, fs.Args(), nil
}

// merge fills every flag the user did not give from the manifest.
func (cfg *config) merge(m *manifest) {
	str := func(name string, dst *string, v string) {
		if !cfg.set[name] && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *int, v int) {
		if !cfg.set[name] && v != 0 {
			*dst = v
		}
	}
	str("o", &cfg.output, m.resolveOutput())
	str("format", &cfg.format, m.Format)
	str("bg", &cfg.background, m.Background)
	num("initial", &cfg.initial, m.Initial)
	num("max", &cfg.max, m.Max)
	num("depth", &cfg.depth, m.Depth)
	num("channels", &cfg.channels, m.Channels)
	if !cfg.set["padding"] && m.Padding != nil {
		cfg.padding = *m.Padding
	}
	if !cfg.set["grow"] && m.Grow != 0 {
		cfg.grow = m.Grow
	}
	if !cfg.set["flipy-load"] && m.FlipY {
		cfg.flipYLoad = true
	}
}

func (m *manifest) resolveOutput() string {
	if m.Output == "" {
		return ""
	}
	return m.resolve(m.Output)
}

func parseDepth(bits int) (pixbuf.Depth, error) {
	switch bits {
	case 8:
		return pixbuf.Depth8, nil
	case 16:
		return pixbuf.Depth16, nil
	case 32:
		return pixbuf.Depth32F, nil
	}
	return 0, errors.Errorf("unsupported depth %d, want 8, 16 or 32", bits)
}

func (cfg *config) buildOptions() (sheet.Options, error) {
	opts := sheet.DefaultOptions()
	bg, err := parseColor(cfg.background)
	if err != nil {
		return opts, err
	}
	opts.Background = bg
	opts.Padding = cfg.padding
	opts.Pack = pack.Options{Initial: cfg.initial, Growth: float32(cfg.grow), Max: cfg.max}
	if cfg.verbose {
		opts.Logf = log.Printf
	}
	return opts, nil
}

func build(cfg *config, inputs []string) (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "error building sheet")
		}
	}()

	var m *manifest
	if cfg.manifest != "" {
		if m, err = loadManifest(cfg.manifest); err != nil {
			return err
		}
		cfg.merge(m)
	}
	if m == nil && len(inputs) == 0 {
		return errors.New("no inputs")
	}

	format, err := imgcodec.ParseFormat(cfg.format)
	if err != nil {
		return err
	}
	depth, err := parseDepth(cfg.depth)
	if err != nil {
		return err
	}
	if !imgcodec.Supports(format, depth) {
		return errors.Errorf("format %v cannot store %v atlases", format, depth)
	}
	opts, err := cfg.buildOptions()
	if err != nil {
		return err
	}

	l := &loader{
		channels: cfg.channels,
		depth:    depth,
		flipY:    cfg.flipYLoad,
		autoname: cfg.autoname,
		verbose:  cfg.verbose,
	}
	set := sheet.NewBuildSet()
	if m != nil {
		if err := l.addManifest(set, m); err != nil {
			return err
		}
	}
	files, err := expand(inputs)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := l.addFile(set, f); err != nil {
			return err
		}
	}

	s, err := sheet.Build(set, opts)
	if err != nil {
		return err
	}
	defer s.Release()
	if err := sheet.Write(cfg.output, s, format); err != nil {
		return err
	}
	if cfg.verbose {
		log.Printf("wrote %s: %d sprites, %d animations, %dx%d %v",
			cfg.output, len(s.Sprites), len(s.Animations), s.Atlas.Width, s.Atlas.Height, format)
	}
	if cfg.png != "" {
		return dumpPNG(cfg.png, s.Atlas)
	}
	return nil
}

// dumpPNG writes atlas as a PNG, reducing float atlases to 16 bits.
func dumpPNG(path string, atlas *pixbuf.Image) error {
	if atlas.Depth == pixbuf.Depth32F {
		wide, err := atlas.Convert(atlas.Channels, pixbuf.Depth16)
		if err != nil {
			return err
		}
		atlas = wide
	}
	data, err := imgcodec.Encode(atlas, imgcodec.PNG)
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "error writing atlas png")
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, inputs, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if cfg.inspect != "" {
		var flip sheet.Flip
		if cfg.flipX {
			flip |= sheet.FlipX
		}
		if cfg.flipY {
			flip |= sheet.FlipY
		}
		return inspect(stdout, cfg.inspect, flip)
	}
	return build(cfg, inputs)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("spritepacker: ")
	err := run(os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
}
