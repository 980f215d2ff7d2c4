package pixbuf

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/colornames"

	"chimatools/chima"
)

func TestNew_FillsBackground(t *testing.T) {
	img, err := New(3, 2, 4, Depth8, Color{1, 0.5, 0, 1})
	require.NoError(t, err)
	require.Len(t, img.Pix8, 3*2*4)
	for i := 0; i < len(img.Pix8); i += 4 {
		assert.Equal(t, []uint8{255, 127, 0, 255}, img.Pix8[i:i+4])
	}
}

func TestNew_FillDepths(t *testing.T) {
	img16, err := New(1, 1, 2, Depth16, Color{1, 1, 1, 0.5})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0xFFFF, 0xFFFF}, img16.Pix16)

	imgF, err := New(2, 1, 3, Depth32F, Color{0.25, 2, -1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 1, 0, 0.25, 1, 0}, imgF.Pix32)
}

func TestNew_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		w, h, ch int
		depth    Depth
		wantKind chima.Kind
	}{
		{"zero width", 0, 4, 4, Depth8, chima.InvalidArgument},
		{"zero height", 4, 0, 4, Depth8, chima.InvalidArgument},
		{"five channels", 4, 4, 5, Depth8, chima.InvalidArgument},
		{"bad depth", 4, 4, 4, Depth(7), chima.InvalidArgument},
		{"huge", 1 << 20, 1 << 20, 4, Depth8, chima.AllocationFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.w, tc.h, tc.ch, tc.depth, Black)
			assert.True(t, chima.Is(err, tc.wantKind), "got %v", err)
		})
	}
}

func TestBytes_RoundTrip(t *testing.T) {
	for _, depth := range []Depth{Depth8, Depth16, Depth32F} {
		img, err := New(4, 3, 3, depth, Color{0.2, 0.4, 0.6, 1})
		require.NoError(t, err)
		img.SetValue(5, 0.9)
		back, err := FromBytes(4, 3, 3, depth, img.Bytes())
		require.NoError(t, err, depth.String())
		assert.Equal(t, img, back, depth.String())
	}
}

func TestFromBytes_Lengths(t *testing.T) {
	_, err := FromBytes(2, 2, 4, Depth16, make([]byte, 31))
	assert.True(t, chima.Is(err, chima.TruncatedFile))
	_, err = FromBytes(2, 2, 4, Depth16, make([]byte, 33))
	assert.True(t, chima.Is(err, chima.DecodeFailure))
}

func TestConvert_ChannelsAndDepth(t *testing.T) {
	grey, err := New(2, 2, 1, Depth8, Color{0.5, 0.5, 0.5, 1})
	require.NoError(t, err)

	rgba, err := grey.Convert(4, Depth8)
	require.NoError(t, err)
	assert.Equal(t, []uint8{127, 127, 127, 255}, rgba.Pix8[:4])

	wide, err := rgba.Convert(4, Depth16)
	require.NoError(t, err)
	assert.Equal(t, []uint16{127 * 257, 127 * 257, 127 * 257, 0xFFFF}, wide.Pix16[:4])

	back, err := wide.Convert(1, Depth8)
	require.NoError(t, err)
	assert.Equal(t, grey.Pix8, back.Pix8)
}

func TestClone_IsDeep(t *testing.T) {
	img, err := New(1, 1, 1, Depth8, Black)
	require.NoError(t, err)
	c := img.Clone()
	c.Pix8[0] = 9
	assert.Equal(t, uint8(0), img.Pix8[0])
}

func TestFlipY(t *testing.T) {
	img, err := FromBytes(2, 3, 1, Depth8, []byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	img.FlipY()
	assert.Equal(t, []uint8{5, 6, 3, 4, 1, 2}, img.Pix8)

	wide, err := img.Convert(2, Depth16)
	require.NoError(t, err)
	wide.FlipY()
	back, err := wide.Convert(1, Depth8)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, back.Pix8)
}

func TestRelease(t *testing.T) {
	img, err := New(1, 1, 1, Depth32F, Black)
	require.NoError(t, err)
	img.Release()
	assert.True(t, img.Released())
	img.Release()
	var nilImg *Image
	nilImg.Release()
}

func TestStdImage_RoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 40})
	src.SetNRGBA(1, 0, color.NRGBA{200, 100, 50, 255})

	img, err := FromImage(src, 0, Depth8)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Channels)
	assert.Equal(t, []uint8{10, 20, 30, 40, 200, 100, 50, 255}, img.Pix8)
	assert.Equal(t, src, img.ToImage())
}

func TestChannelsOf(t *testing.T) {
	assert.Equal(t, 1, ChannelsOf(image.NewGray(image.Rect(0, 0, 1, 1))))
	assert.Equal(t, 1, ChannelsOf(image.NewGray16(image.Rect(0, 0, 1, 1))))
	opaque := image.NewRGBA(image.Rect(0, 0, 1, 1))
	opaque.Set(0, 0, color.White)
	assert.Equal(t, 3, ChannelsOf(opaque))
	assert.Equal(t, 4, ChannelsOf(image.NewNRGBA(image.Rect(0, 0, 1, 1))))
}

func TestColorFrom_Colornames(t *testing.T) {
	c := ColorFrom(colornames.Red)
	assert.Equal(t, Color{1, 0, 0, 1}, c)
}

func TestNewAnimation(t *testing.T) {
	a, _ := New(2, 2, 4, Depth8, Black)
	b, _ := New(3, 1, 4, Depth8, White)
	anim, err := NewAnimation([]*Image{a, b}, nil)
	require.NoError(t, err)
	assert.Equal(t, []uint32{DefaultDuration, DefaultDuration}, anim.Durations)

	_, err = NewAnimation([]*Image{a, b}, []uint32{1})
	assert.True(t, chima.Is(err, chima.InvalidArgument))

	c, _ := New(2, 2, 3, Depth8, Black)
	_, err = NewAnimation([]*Image{a, c}, nil)
	assert.True(t, chima.Is(err, chima.InvalidArgument))

	_, err = NewAnimation(nil, nil)
	assert.True(t, chima.Is(err, chima.InvalidArgument))

	anim.Release()
	assert.True(t, a.Released())
	assert.Nil(t, anim.Frames)
}
