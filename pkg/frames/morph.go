package frames

// Binomial approximation of a 5x5 Gaussian, the kernel OpenCV uses for
// ksize 5 with auto sigma. Applied separably, edges replicated.
var gauss5 = [5]float64{1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16}

// GaussianBlur5 returns src blurred with a fixed 5x5 Gaussian kernel.
func GaussianBlur5(src *Image) *Image {
	w, h := src.Width, src.Height
	tmp := NewImage(w, h)
	dst := NewImage(w, h)

	clampX := func(x int) int {
		if x < 0 {
			return 0
		}
		if x >= w {
			return w - 1
		}
		return x
	}
	clampY := func(y int) int {
		if y < 0 {
			return 0
		}
		if y >= h {
			return h - 1
		}
		return y
	}

	// Horizontal pass
	for y := 0; y < h; y++ {
		row := src.Pix[y*w : (y+1)*w]
		out := tmp.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			sum := 0.0
			for k := -2; k <= 2; k++ {
				sum += gauss5[k+2] * row[clampX(x+k)]
			}
			out[x] = sum
		}
	}
	// Vertical pass
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0.0
			for k := -2; k <= 2; k++ {
				sum += gauss5[k+2] * tmp.Pix[clampY(y+k)*w+x]
			}
			dst.Pix[y*w+x] = sum
		}
	}
	return dst
}

// Bitmap is a binary foreground mask, one byte per pixel (0 or 1).
type Bitmap struct {
	Width  int
	Height int
	Pix    []uint8
}

func NewBitmap(width, height int) *Bitmap {
	return &Bitmap{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

func (b *Bitmap) At(x, y int) uint8 {
	return b.Pix[y*b.Width+x]
}

// Threshold builds a binary mask from src: pixels strictly above thresh
// become 1, everything else 0.
func Threshold(src *Image, thresh float64) *Bitmap {
	b := NewBitmap(src.Width, src.Height)
	for i, v := range src.Pix {
		if v > thresh {
			b.Pix[i] = 1
		}
	}
	return b
}

// Dilate grows the foreground by a square kernel of size 2*radius+1.
// radius 0 returns the receiver unchanged.
func (b *Bitmap) Dilate(radius int) *Bitmap {
	if radius <= 0 {
		return b
	}
	w, h := b.Width, b.Height
	// Two passes, horizontal then vertical. A square structuring element
	// is separable into two line elements.
	tmp := NewBitmap(w, h)
	for y := 0; y < h; y++ {
		row := b.Pix[y*w : (y+1)*w]
		out := tmp.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			x0 := max(0, x-radius)
			x1 := min(w-1, x+radius)
			for i := x0; i <= x1; i++ {
				if row[i] != 0 {
					out[x] = 1
					break
				}
			}
		}
	}
	dst := NewBitmap(w, h)
	for y := 0; y < h; y++ {
		y0 := max(0, y-radius)
		y1 := min(h-1, y+radius)
		for x := 0; x < w; x++ {
			for i := y0; i <= y1; i++ {
				if tmp.Pix[i*w+x] != 0 {
					dst.Pix[y*w+x] = 1
					break
				}
			}
		}
	}
	return dst
}

// Label assigns a 1-based label to each 8-connected foreground component.
// Returns the label mask and the number of components. Labels are assigned
// in raster-scan order of each component's first pixel, so the numbering is
// deterministic.
func (b *Bitmap) Label() (*Mask, int) {
	w, h := b.Width, b.Height
	mask := NewMask(w, h)
	next := int32(0)
	stack := make([]int, 0, 64)

	for start := 0; start < len(b.Pix); start++ {
		if b.Pix[start] == 0 || mask.Pix[start] != 0 {
			continue
		}
		next++
		stack = append(stack[:0], start)
		mask.Pix[start] = next
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x := idx % w
			y := idx / w
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx := x + dx
					ny := y + dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					n := ny*w + nx
					if b.Pix[n] != 0 && mask.Pix[n] == 0 {
						mask.Pix[n] = next
						stack = append(stack, n)
					}
				}
			}
		}
	}
	return mask, int(next)
}
