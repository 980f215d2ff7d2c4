package sheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"

	"chimatools/chima"
	"chimatools/imgcodec"
	"chimatools/pack"
	"chimatools/pixbuf"
)

func solid(t *testing.T, w, h, channels int, depth pixbuf.Depth, c pixbuf.Color) *pixbuf.Image {
	t.Helper()
	img, err := pixbuf.New(w, h, channels, depth, c)
	require.NoError(t, err)
	return img
}

func named(c string) pixbuf.Color {
	return pixbuf.ColorFrom(colornames.Map[c])
}

// scenario builds a 64×64 red "a" plus a two frame 32×32 animation "b".
func scenario(t *testing.T) (*BuildSet, Options) {
	t.Helper()
	set := NewBuildSet()
	require.NoError(t, set.AddImage(solid(t, 64, 64, 4, pixbuf.Depth8, named("red")), "a"))
	anim, err := pixbuf.NewAnimation([]*pixbuf.Image{
		solid(t, 32, 32, 4, pixbuf.Depth8, named("lime")),
		solid(t, 32, 32, 4, pixbuf.Depth8, named("blue")),
	}, []uint32{40, 60})
	require.NoError(t, err)
	require.NoError(t, set.AddAnimation(anim, "b"))

	opts := DefaultOptions()
	opts.Padding = 2
	opts.Pack.Initial = 128
	return set, opts
}

func pixel(img *pixbuf.Image, x, y int) []uint8 {
	p := img.Offset(x, y)
	return img.Pix8[p : p+img.Channels]
}

func TestBuild_Scenario(t *testing.T) {
	set, opts := scenario(t)
	var logged []string
	opts.Logf = func(format string, args ...interface{}) {
		logged = append(logged, format)
	}

	s, err := Build(set, opts)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	assert.Equal(t, 128, s.Atlas.Width)
	assert.Equal(t, 128, s.Atlas.Height)
	assert.NotEmpty(t, logged)

	require.Len(t, s.Sprites, 3)
	assert.Equal(t, "a", s.Sprites[0].Name)
	assert.Equal(t, "b.00000", s.Sprites[1].Name)
	assert.Equal(t, "b.00001", s.Sprites[2].Name)
	assert.Equal(t, []uint32{1, 40, 60},
		[]uint32{s.Sprites[0].Duration, s.Sprites[1].Duration, s.Sprites[2].Duration})
	assert.Equal(t, []SpriteAnimation{{Name: "b", Start: 1, Count: 2}}, s.Animations)

	a := s.Sprites[0]
	assert.Equal(t, uint32(64), a.Width)
	assert.Equal(t, uint32(64), a.Height)
	assert.Equal(t, []uint8{255, 0, 0, 255}, pixel(s.Atlas, int(a.X), int(a.Y)))
	assert.Equal(t, []uint8{255, 0, 0, 255}, pixel(s.Atlas, int(a.X+63), int(a.Y+63)))
	f1 := s.Sprites[2]
	assert.Equal(t, []uint8{0, 0, 255, 255}, pixel(s.Atlas, int(f1.X+31), int(f1.Y)))

	data, err := Encode(s, imgcodec.RAW)
	require.NoError(t, err)
	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s.Sprites, back.Sprites)
	assert.Equal(t, s.Animations, back.Animations)
	assert.Equal(t, s.Atlas.Pix8, back.Atlas.Pix8)
}

func TestBuild_PaddingSeparatesSprites(t *testing.T) {
	set := NewBuildSet()
	for i := 0; i < 6; i++ {
		require.NoError(t, set.AddImage(solid(t, 10, 7, 3, pixbuf.Depth8, pixbuf.White), ""))
	}
	opts := DefaultOptions()
	opts.Padding = 3
	opts.Pack.Initial = 16
	s, err := Build(set, opts)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	for i, a := range s.Sprites {
		grown := Rect{X: a.X, Y: a.Y, Width: a.Width + 3, Height: a.Height + 3}
		for j := i + 1; j < len(s.Sprites); j++ {
			b := s.Sprites[j]
			assert.False(t, grown.overlaps(Rect{X: b.X, Y: b.Y, Width: b.Width + 3, Height: b.Height + 3}))
		}
	}
}

func TestBuildSet_AutoNames(t *testing.T) {
	set := &BuildSet{}
	img := solid(t, 2, 2, 4, pixbuf.Depth8, pixbuf.White)
	require.NoError(t, set.AddImage(img, ""))
	require.NoError(t, set.AddImage(img, ""))

	frames := []*pixbuf.Image{img, img, img}
	walk, err := pixbuf.NewAnimation(frames, nil)
	require.NoError(t, err)
	require.NoError(t, set.AddAnimation(walk, "walk"))
	require.NoError(t, set.AddAnimation(walk, ""))

	assert.Equal(t, 2, set.ImageCount())
	assert.Equal(t, 2, set.AnimationCount())
	assert.Equal(t, 8, set.Len())

	var names []string
	for _, s := range set.flatten() {
		names = append(names, s.name)
	}
	assert.Equal(t, []string{
		"chima_image.00000", "chima_image.00001",
		"walk.00000", "walk.00001", "walk.00002",
		"chima_anim.00001.00000", "chima_anim.00001.00001", "chima_anim.00001.00002",
	}, names)
}

func TestBuildSet_AddImages(t *testing.T) {
	img := solid(t, 2, 2, 1, pixbuf.Depth8, pixbuf.Black)
	set := NewBuildSet()
	require.NoError(t, set.AddImage(img, "first"))
	require.NoError(t, set.AddImages([]*pixbuf.Image{img, img}, []uint32{5, 6}, "tile"))
	require.NoError(t, set.AddImages([]*pixbuf.Image{img}, nil, ""))

	flat := set.flatten()
	require.Len(t, flat, 4)
	assert.Equal(t, "tile.00000", flat[1].name)
	assert.Equal(t, uint32(6), flat[2].duration)
	assert.Equal(t, "chima_image.00003", flat[3].name)
	assert.Equal(t, uint32(pixbuf.DefaultDuration), flat[3].duration)

	err := set.AddImages([]*pixbuf.Image{img, nil}, nil, "x")
	assert.True(t, chima.Is(err, chima.InvalidArgument))
	assert.Equal(t, 4, set.Len(), "rejected batch must not be added")
	err = set.AddImages([]*pixbuf.Image{img}, []uint32{1, 2}, "x")
	assert.True(t, chima.Is(err, chima.InvalidArgument))
}

func TestBuildSet_Rejects(t *testing.T) {
	set := NewBuildSet()
	img := solid(t, 1, 1, 4, pixbuf.Depth8, pixbuf.White)
	assert.True(t, chima.Is(set.AddImage(nil, "x"), chima.InvalidArgument))
	assert.True(t, chima.Is(set.AddImage(img, strings.Repeat("n", MaxNameLen+1)), chima.InvalidArgument))
	assert.NoError(t, set.AddImage(img, strings.Repeat("n", MaxNameLen)))
	assert.True(t, chima.Is(set.AddAnimation(nil, "x"), chima.InvalidArgument))
	assert.True(t, chima.Is(set.AddAnimation(&pixbuf.Animation{}, "x"), chima.InvalidArgument))

	released := solid(t, 1, 1, 4, pixbuf.Depth8, pixbuf.White)
	released.Release()
	assert.True(t, chima.Is(set.AddImage(released, ""), chima.InvalidArgument))
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(NewBuildSet(), DefaultOptions())
	assert.True(t, chima.Is(err, chima.InvalidArgument))

	mixed := NewBuildSet()
	require.NoError(t, mixed.AddImage(solid(t, 4, 4, 4, pixbuf.Depth8, pixbuf.White), "rgba"))
	require.NoError(t, mixed.AddImage(solid(t, 4, 4, 3, pixbuf.Depth8, pixbuf.White), "rgb"))
	_, err = Build(mixed, DefaultOptions())
	assert.True(t, chima.Is(err, chima.InvalidArgument))
	assert.Contains(t, err.Error(), `"rgb"`)

	depths := NewBuildSet()
	require.NoError(t, depths.AddImage(solid(t, 4, 4, 4, pixbuf.Depth8, pixbuf.White), ""))
	require.NoError(t, depths.AddImage(solid(t, 4, 4, 4, pixbuf.Depth16, pixbuf.White), ""))
	_, err = Build(depths, DefaultOptions())
	assert.True(t, chima.Is(err, chima.InvalidArgument))

	big := NewBuildSet()
	require.NoError(t, big.AddImage(solid(t, 100, 100, 1, pixbuf.Depth8, pixbuf.White), ""))
	opts := DefaultOptions()
	opts.Pack = pack.Options{Initial: 16, Growth: 2, Max: 64}
	_, err = Build(big, opts)
	assert.True(t, chima.Is(err, chima.PackingFailed))
}

func TestSpriteSheet_Lookup(t *testing.T) {
	set, opts := scenario(t)
	s, err := Build(set, opts)
	require.NoError(t, err)

	sp, ok := s.Sprite("b.00001")
	require.True(t, ok)
	assert.Equal(t, uint32(60), sp.Duration)
	_, ok = s.Sprite("nope")
	assert.False(t, ok)

	b, ok := s.Animation("b")
	require.True(t, ok)
	frames := s.Frames(b)
	require.Len(t, frames, 2)
	assert.Equal(t, "b.00000", frames[0].Name)
	assert.Nil(t, s.Frames(SpriteAnimation{Start: 2, Count: 5}))

	s.Release()
	assert.Nil(t, s.Atlas)
	assert.Error(t, s.Validate())
}

func TestSpriteSheet_ValidateOverlap(t *testing.T) {
	s := &SpriteSheet{
		Atlas: solid(t, 16, 16, 4, pixbuf.Depth8, pixbuf.White),
		Sprites: []Sprite{
			{Rect: Rect{X: 0, Y: 0, Width: 8, Height: 8}, Name: "a"},
			{Rect: Rect{X: 7, Y: 7, Width: 4, Height: 4}, Name: "b"},
		},
	}
	assert.True(t, chima.Is(s.Validate(), chima.InvalidArgument))

	s.Sprites[1].X, s.Sprites[1].Y = 8, 0
	assert.NoError(t, s.Validate())
	s.Sprites[1].X = 13
	assert.Error(t, s.Validate())
	s.Sprites[1].X = 8
	s.Animations = []SpriteAnimation{{Name: "x", Start: 1, Count: 2}}
	assert.Error(t, s.Validate())
}
