// Package frames holds the raw thermal frame and float image grids that the
// tracking pipeline operates on, along with the small set of fixed image
// operations it needs (Gaussian blur, dilation, connected components).
package frames

import (
	"github.com/cyclopcam/thermal/pkg/geom"
)

// Frame is a single-channel thermal intensity frame, row-major.
type Frame struct {
	Number int // Frame index within the clip
	Width  int
	Height int
	Pix    []uint16
}

func NewFrame(number, width, height int) *Frame {
	return &Frame{
		Number: number,
		Width:  width,
		Height: height,
		Pix:    make([]uint16, width*height),
	}
}

func (f *Frame) At(x, y int) uint16 {
	return f.Pix[y*f.Width+x]
}

func (f *Frame) Set(x, y int, v uint16) {
	f.Pix[y*f.Width+x] = v
}

// Float copies the frame into a float64 image.
func (f *Frame) Float() *Image {
	img := NewImage(f.Width, f.Height)
	for i, v := range f.Pix {
		img.Pix[i] = float64(v)
	}
	return img
}

// Image is a float64 grid, used for filtered and delta frames.
type Image struct {
	Width  int
	Height int
	Pix    []float64
}

func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

func (m *Image) At(x, y int) float64 {
	return m.Pix[y*m.Width+x]
}

func (m *Image) Set(x, y int, v float64) {
	m.Pix[y*m.Width+x] = v
}

func (m *Image) Clone() *Image {
	c := &Image{
		Width:  m.Width,
		Height: m.Height,
		Pix:    make([]float64, len(m.Pix)),
	}
	copy(c.Pix, m.Pix)
	return c
}

func (m *Image) Bounds() geom.Rect {
	return geom.Rect{Width: m.Width, Height: m.Height}
}

// Crop returns a copy of the pixels inside r.
func (m *Image) Crop(r geom.Rect) *Image {
	c := NewImage(r.Width, r.Height)
	for y := 0; y < r.Height; y++ {
		src := (r.Y+y)*m.Width + r.X
		copy(c.Pix[y*r.Width:(y+1)*r.Width], m.Pix[src:src+r.Width])
	}
	return c
}

// SubScalar subtracts v from every pixel, in place.
func (m *Image) SubScalar(v float64) {
	for i := range m.Pix {
		m.Pix[i] -= v
	}
}

// Sub subtracts b from m, in place. The images must be the same size.
func (m *Image) Sub(b *Image) {
	for i := range m.Pix {
		m.Pix[i] -= b.Pix[i]
	}
}

// ClampZero clamps every negative pixel to zero, in place.
func (m *Image) ClampZero() {
	for i := range m.Pix {
		if m.Pix[i] < 0 {
			m.Pix[i] = 0
		}
	}
}

// AbsDiff returns |a - b|. The images must be the same size.
func AbsDiff(a, b *Image) *Image {
	d := NewImage(a.Width, a.Height)
	for i := range d.Pix {
		v := a.Pix[i] - b.Pix[i]
		if v < 0 {
			v = -v
		}
		d.Pix[i] = v
	}
	return d
}

// Mask is an integer label grid. Zero is background, labels are 1-based.
type Mask struct {
	Width  int
	Height int
	Pix    []int32
}

func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]int32, width*height),
	}
}

func (m *Mask) At(x, y int) int32 {
	return m.Pix[y*m.Width+x]
}

func (m *Mask) Set(x, y int, v int32) {
	m.Pix[y*m.Width+x] = v
}

// Paste copies src into m with its top-left corner at (x, y).
func (m *Mask) Paste(src *Mask, x, y int) {
	for sy := 0; sy < src.Height; sy++ {
		dst := (y+sy)*m.Width + x
		copy(m.Pix[dst:dst+src.Width], src.Pix[sy*src.Width:(sy+1)*src.Width])
	}
}
