package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	pixel "github.com/gopxl/pixel/v2"
	"github.com/gopxl/pixel/v2/backends/opengl"
	"github.com/gopxl/pixel/v2/ext/imdraw"
	"golang.org/x/image/colornames"

	"chimatools/preview"
	"chimatools/sheet"
)

var (
	scale   = flag.Float64("scale", 0, "zoom factor, 0 fits the atlas to the window")
	winSize = pixel.V(1024, 768)
)

// atlasView draws the whole atlas with an outline around every sprite.
type atlasView struct {
	sheet    *sheet.SpriteSheet
	sprite   *pixel.Sprite
	outlines bool
}

func (av *atlasView) draw(win *opengl.Window, imd *imdraw.IMDraw, m pixel.Matrix, zoom float64, current []pixel.Rect) {
	av.sprite.Draw(win, pixel.IM.Moved(av.sprite.Frame().Center()).Chained(m))
	if !av.outlines {
		return
	}
	imd.Clear()
	imd.SetMatrix(m)
	imd.Color = colornames.Gray
	for _, sp := range av.sheet.Sprites {
		r := preview.FrameRect(av.sheet, sp)
		imd.Push(r.Min, r.Max)
		imd.Rectangle(1 / zoom)
	}
	// the frames of the clip being played
	imd.Color = colornames.Orangered
	for _, r := range current {
		imd.Push(r.Min, r.Max)
		imd.Rectangle(2 / zoom)
	}
	imd.Draw(win)
}

// animView plays the selected clip next to the atlas.
type animView struct {
	pic    pixel.Picture
	player *preview.Player
	sprite *pixel.Sprite
}

func (a *animView) update(dt float64) {
	a.player.Update(dt)
}

func (a *animView) draw(t pixel.Target, center pixel.Vec, scale float64) {
	if a.sprite == nil {
		a.sprite = pixel.NewSprite(nil, pixel.Rect{})
	}
	a.sprite.Set(a.pic, a.player.Frame())
	a.sprite.Draw(t, pixel.IM.Scaled(pixel.ZV, scale).Moved(center))
}

func fitScale(bounds, area pixel.Rect) float64 {
	return math.Min(area.W()/bounds.W(), area.H()/bounds.H())
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() {
	s, pic, anims, err := preview.LoadSheet(flag.Arg(0))
	check(err)

	cfg := opengl.WindowConfig{
		Title:  "chimatools - " + flag.Arg(0),
		Bounds: pixel.R(0, 0, winSize.X, winSize.Y),
		VSync:  true,
	}
	win, err := opengl.NewWindow(cfg)
	check(err)

	atlas := &atlasView{
		sheet:    s,
		sprite:   pixel.NewSprite(pic, pic.Bounds()),
		outlines: true,
	}
	anim := &animView{
		pic:    pic,
		player: preview.NewPlayer(s),
	}
	fmt.Printf("%d sprites, %d clips, playing %q\n", len(s.Sprites), len(anims), anim.player.Name())

	// atlas on the left two thirds, animation on the right third
	left := pixel.R(20, 20, winSize.X*2/3-20, winSize.Y-20)
	right := pixel.R(winSize.X*2/3, 0, winSize.X, winSize.Y)

	zoom := *scale
	if zoom <= 0 {
		zoom = fitScale(pic.Bounds(), left)
	}

	imd := imdraw.New(nil)

	last := time.Now()
	for !win.Closed() {
		dt := time.Since(last).Seconds()
		last = time.Now()

		// slow motion with tab
		if win.Pressed(pixel.KeyTab) {
			dt /= 8
		}

		if win.JustPressed(pixel.KeyRight) {
			anim.player.Next()
			fmt.Printf("playing %q\n", anim.player.Name())
		}
		if win.JustPressed(pixel.KeyLeft) {
			anim.player.Prev()
			fmt.Printf("playing %q\n", anim.player.Name())
		}
		if win.JustPressed(pixel.KeySpace) {
			atlas.outlines = !atlas.outlines
		}
		if win.JustPressed(pixel.KeyEscape) {
			return
		}

		anim.update(dt)

		win.Clear(colornames.Darkslategray)
		m := pixel.IM.Scaled(pixel.ZV, zoom).Moved(left.Center().Sub(pic.Bounds().Center().Scaled(zoom)))
		atlas.draw(win, imd, m, zoom, anims[anim.player.Name()])

		frame := anim.player.Frame()
		frameZoom := math.Min(fitScale(frame, right.Resized(right.Center(), right.Size().Scaled(0.8))), 8)
		anim.draw(win, right.Center(), frameZoom)
		win.Update()
	}
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), `Usage: chimatools [-scale s] sheet.chima

controls:
left/right: previous/next animation
tab: slow motion  space: toggle outlines  escape: quit`)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	opengl.Run(run)
}
