package pixbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chimatools/chima"
)

func mustNew(t *testing.T, w, h, ch int, depth Depth, c Color) *Image {
	t.Helper()
	img, err := New(w, h, ch, depth, c)
	require.NoError(t, err)
	return img
}

func TestComposite_OpaqueSourceReplaces(t *testing.T) {
	dst := mustNew(t, 8, 8, 4, Depth8, Color{0.1, 0.2, 0.3, 0.4})
	src := mustNew(t, 3, 2, 4, Depth8, Color{1, 0, 0.5, 1})
	src.Pix8[0], src.Pix8[1] = 17, 230

	require.NoError(t, Composite(dst, src, 2, 5))
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			s := src.Offset(x, y)
			d := dst.Offset(x+2, y+5)
			assert.Equal(t, src.Pix8[s:s+4], dst.Pix8[d:d+4], "pixel %d,%d", x, y)
		}
	}
	// Outside the covered region nothing changed.
	assert.Equal(t, []uint8{25, 51, 76, 102}, dst.Pix8[:4])
}

func TestComposite_TransparentSourceKeepsDestination(t *testing.T) {
	dst := mustNew(t, 4, 4, 4, Depth8, Color{0.3, 0.6, 0.9, 0.2})
	before := dst.Clone()
	src := mustNew(t, 4, 4, 4, Depth8, Color{1, 1, 1, 0})
	require.NoError(t, Composite(dst, src, 0, 0))
	assert.Equal(t, before.Pix8, dst.Pix8)
}

func TestComposite_ThreeChannelSourceIsOpaque(t *testing.T) {
	for _, dstChannels := range []int{3, 4} {
		dst := mustNew(t, 2, 2, dstChannels, Depth8, Color{0.9, 0.9, 0.9, 0.3})
		src := mustNew(t, 2, 2, 3, Depth8, Color{0.2, 0.4, 0.6, 1})
		require.NoError(t, Composite(dst, src, 0, 0))
		for p := 0; p < 4; p++ {
			d := p * dstChannels
			assert.Equal(t, src.Pix8[p*3:p*3+3], dst.Pix8[d:d+3])
			if dstChannels == 4 {
				assert.Equal(t, uint8(255), dst.Pix8[d+3])
			}
		}
	}
}

func TestComposite_HalfAlphaBlend(t *testing.T) {
	dst := mustNew(t, 1, 1, 4, Depth8, Color{0, 0, 1, 1})
	src := &Image{Width: 1, Height: 1, Channels: 4, Depth: Depth8, Pix8: []uint8{255, 0, 0, 102}}
	require.NoError(t, Composite(dst, src, 0, 0))
	// sa = 0.4, da = 1: out = dst*0.6 + src*0.4
	assert.Equal(t, []uint8{102, 0, 153, 255}, dst.Pix8)
}

func TestComposite_ClipsOverflow(t *testing.T) {
	dst := mustNew(t, 4, 4, 1, Depth8, Black)
	src := mustNew(t, 3, 3, 1, Depth8, White)
	require.NoError(t, Composite(dst, src, 2, 3))
	want := []uint8{
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 0, 255, 255,
	}
	assert.Equal(t, want, dst.Pix8)

	require.NoError(t, Composite(dst, src, 10, 10))
	assert.Equal(t, want, dst.Pix8)
}

func TestComposite_GreyIntoRGB(t *testing.T) {
	dst := mustNew(t, 1, 1, 3, Depth16, Black)
	src := mustNew(t, 1, 1, 1, Depth16, Color{0.5, 0.5, 0.5, 1})
	require.NoError(t, Composite(dst, src, 0, 0))
	v := src.Pix16[0]
	assert.Equal(t, []uint16{v, v, v}, dst.Pix16)
}

func TestComposite_RGBIntoGrey(t *testing.T) {
	dst := mustNew(t, 2, 1, 1, Depth8, Black)
	src := mustNew(t, 1, 1, 4, Depth8, Color{0, 1, 0, 1})
	require.NoError(t, Composite(dst, src, 1, 0))
	assert.Equal(t, []uint8{0, 150}, dst.Pix8)

	grey, err := src.Convert(1, Depth8)
	require.NoError(t, err)
	assert.Equal(t, grey.Pix8[0], dst.Pix8[1])
}

func TestComposite_Float(t *testing.T) {
	dst := mustNew(t, 1, 1, 4, Depth32F, Color{0, 0, 0, 0})
	src := mustNew(t, 1, 1, 4, Depth32F, Color{0.25, 0.5, 0.75, 0.5})
	require.NoError(t, Composite(dst, src, 0, 0))
	assert.InDeltaSlice(t, []float32{0.25, 0.5, 0.75, 0.5}, dst.Pix32, 1e-6)
}

func TestComposite_Errors(t *testing.T) {
	a := mustNew(t, 2, 2, 4, Depth8, Black)
	b := mustNew(t, 2, 2, 4, Depth16, Black)
	assert.True(t, chima.Is(Composite(nil, a, 0, 0), chima.InvalidArgument))
	assert.True(t, chima.Is(Composite(a, nil, 0, 0), chima.InvalidArgument))
	assert.True(t, chima.Is(Composite(a, b, 0, 0), chima.InvalidArgument))
	assert.True(t, chima.Is(Composite(a, a.Clone(), -1, 0), chima.InvalidArgument))
}
