package colony

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidBuffer is returned when pixel data does not describe a
// non-empty RGBA image.
var ErrInvalidBuffer = errors.New("invalid pixel buffer")

// Buffer is a width×height grid of RGBA samples stored row-major,
// four bytes per pixel. Detection never writes to it.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer wraps raw RGBA bytes. The slice is not copied.
func NewBuffer(width, height int, pix []uint8) (Buffer, error) {
	if width < 1 || height < 1 {
		return Buffer{}, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, width, height)
	}
	if len(pix) != width*height*4 {
		return Buffer{}, fmt.Errorf("%w: got %d bytes, want %d for %dx%d RGBA",
			ErrInvalidBuffer, len(pix), width*height*4, width, height)
	}
	return Buffer{Width: width, Height: height, Pix: pix}, nil
}

// BufferFromImage converts a decoded image into a Buffer.
//
// The image is cloned into non-premultiplied RGBA, so the returned buffer
// does not alias the source image. Bounds are rebased to (0,0).
func BufferFromImage(img image.Image) (Buffer, error) {
	if img == nil {
		return Buffer{}, fmt.Errorf("%w: nil image", ErrInvalidBuffer)
	}
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 1 || h < 1 {
		return Buffer{}, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, w, h)
	}

	// Clone normally produces a tight stride, but don't rely on it.
	if nrgba.Stride == w*4 {
		return NewBuffer(w, h, nrgba.Pix[:w*h*4])
	}
	pix := make([]uint8, w*h*4)
	for y := 0; y < h; y++ {
		copy(pix[y*w*4:(y+1)*w*4], nrgba.Pix[y*nrgba.Stride:y*nrgba.Stride+w*4])
	}
	return NewBuffer(w, h, pix)
}

// Brightness returns the average of the R, G and B samples at (x, y).
// Alpha is ignored.
func (b Buffer) Brightness(x, y int) float64 {
	i := (y*b.Width + x) * 4
	return float64(int(b.Pix[i])+int(b.Pix[i+1])+int(b.Pix[i+2])) / 3
}

// Area returns the number of pixels in the buffer.
func (b Buffer) Area() int {
	return b.Width * b.Height
}
