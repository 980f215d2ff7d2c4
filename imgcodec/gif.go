package imgcodec

import (
	"bytes"
	"image"
	"image/gif"
	"os"

	"golang.org/x/image/draw"

	"chimatools/chima"
	"chimatools/pixbuf"
)

// DecodeAnimation decodes every frame of a GIF. Frames are drawn onto a
// running canvas the size of the logical screen, honoring each frame's
// disposal, so every resulting frame is a full 4 channel picture. Delays are
// converted from hundredths of a second to milliseconds.
func DecodeAnimation(data []byte, depth pixbuf.Depth) (*pixbuf.Animation, error) {
	const op = "imgcodec.DecodeAnimation"
	if !bytes.HasPrefix(data, []byte("GIF8")) {
		return nil, chima.Errorf(chima.UnsupportedFormat, op, "not a GIF")
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, chima.Wrap(chima.DecodeFailure, op, err)
	}
	if len(g.Image) == 0 {
		return nil, chima.Errorf(chima.DecodeFailure, op, "GIF has no frames")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		for _, p := range g.Image {
			bounds = bounds.Union(p.Bounds())
		}
	}
	canvas := image.NewNRGBA(bounds)
	var saved *image.NRGBA

	frames := make([]*pixbuf.Image, 0, len(g.Image))
	durations := make([]uint32, 0, len(g.Image))
	release := func() {
		for _, f := range frames {
			f.Release()
		}
	}
	for i, p := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			saved = image.NewNRGBA(bounds)
			copy(saved.Pix, canvas.Pix)
		}

		draw.Draw(canvas, p.Bounds(), p, p.Bounds().Min, draw.Over)
		frame, err := pixbuf.FromImage(canvas, 4, depth)
		if err != nil {
			release()
			return nil, chima.Wrap(chima.DecodeFailure, op, err)
		}
		frames = append(frames, frame)

		delay := uint32(pixbuf.DefaultDuration)
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = uint32(g.Delay[i]) * 10
		}
		durations = append(durations, delay)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, p.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, saved.Pix)
		}
	}
	return pixbuf.NewAnimation(frames, durations)
}

// LoadAnimation reads a GIF file and decodes all of its frames.
func LoadAnimation(path string, depth pixbuf.Depth) (*pixbuf.Animation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, chima.Wrap(chima.FileOpenFailure, "imgcodec.LoadAnimation", err)
	}
	return DecodeAnimation(data, depth)
}
