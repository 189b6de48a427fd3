package nemu

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameFromRGBA_FlipsAndDropsAlpha(t *testing.T) {
	// 2x2, bottom row first as the renderer writes it
	src := []byte{
		1, 2, 3, 255, 4, 5, 6, 255, // bottom row
		7, 8, 9, 255, 10, 11, 12, 255, // top row
	}

	f := frameFromRGBA(src, 2, 2)

	h, w, c := f.Shape()
	assert.Equal(t, 2, h)
	assert.Equal(t, 2, w)
	assert.Equal(t, 3, c)
	assert.Equal(t, []byte{7, 8, 9, 10, 11, 12, 1, 2, 3, 4, 5, 6}, f.Pix)
	assert.Equal(t, color.RGBA{R: 7, G: 8, B: 9, A: 255}, f.At(0, 0))
	assert.Equal(t, color.RGBA{R: 4, G: 5, B: 6, A: 255}, f.At(1, 1))
}

func TestFrame_BlankAndRGBA(t *testing.T) {
	f := NewBlankFrame(3, 2)
	assert.True(t, f.IsBlank())
	assert.Len(t, f.Pix, 18)

	f.Pix[4] = 9
	assert.False(t, f.IsBlank())

	img := f.RGBA()
	assert.Equal(t, 3, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	assert.Equal(t, color.RGBA{R: 0, G: 9, B: 0, A: 255}, img.RGBAAt(1, 0))
}
