package nemu

import (
	"image"
	"image/color"
)

// Frame is an RGB image, height x width x 3, rows top-down from the top-left
// origin.
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// NewBlankFrame returns an all-zero frame of the given size.
func NewBlankFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*3),
	}
}

// frameFromRGBA converts a bottom-up RGBA buffer as written by
// nemu_capture_display into a top-down RGB frame, dropping alpha.
func frameFromRGBA(src []byte, width, height int) *Frame {
	f := NewBlankFrame(width, height)
	srcStride := width * 4
	dstStride := width * 3

	for y := 0; y < height; y++ {
		srcRow := src[(height-1-y)*srcStride : (height-y)*srcStride]
		dstRow := f.Pix[y*dstStride : (y+1)*dstStride]
		for x := 0; x < width; x++ {
			copy(dstRow[x*3:x*3+3], srcRow[x*4:x*4+3])
		}
	}

	return f
}

// Shape returns (height, width, channels).
func (f *Frame) Shape() (int, int, int) {
	return f.Height, f.Width, 3
}

// At returns the pixel at (x, y).
func (f *Frame) At(x, y int) color.RGBA {
	i := (y*f.Width + x) * 3
	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 0xff}
}

// IsBlank reports whether every byte is zero, which is what a failed capture
// returns.
func (f *Frame) IsBlank() bool {
	for _, b := range f.Pix {
		if b != 0 {
			return false
		}
	}
	return true
}

// RGBA converts the frame for use with the image encoders.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
