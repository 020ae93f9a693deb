package geom

import (
	"fmt"

	"github.com/chewxy/math32"
)

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) Distance(b Point) float32 {
	return math32.Sqrt(float32((p.X-b.X)*(p.X-b.X) + (p.Y-b.Y)*(p.Y-b.Y)))
}

type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) X2() int {
	return r.X + r.Width
}

func (r Rect) Y2() int {
	return r.Y + r.Height
}

func (r Rect) Area() int {
	return r.Width * r.Height
}

func (r Rect) Intersection(b Rect) Rect {
	x1 := max(r.X, b.X)
	y1 := max(r.Y, b.Y)
	x2 := min(r.X2(), b.X2())
	y2 := min(r.Y2(), b.Y2())
	return Rect{
		X:      x1,
		Y:      y1,
		Width:  max(0, x2-x1),
		Height: max(0, y2-y1),
	}
}

func (r Rect) Union(b Rect) Rect {
	x1 := min(r.X, b.X)
	y1 := min(r.Y, b.Y)
	x2 := max(r.X2(), b.X2())
	y2 := max(r.Y2(), b.Y2())
	return Rect{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}

// OverlapArea is the area of the intersection of the two rectangles.
func (r Rect) OverlapArea(b Rect) int {
	return r.Intersection(b).Area()
}

// Intersection over Union
func (r Rect) IOU(b Rect) float32 {
	intersection := r.Intersection(b)
	return float32(intersection.Area()) / float32(r.Area()+b.Area()-intersection.Area())
}

func (r Rect) Center() Point {
	return Point{
		X: r.X + r.Width/2,
		Y: r.Y + r.Height/2,
	}
}

func (r *Rect) Offset(dx, dy int) {
	r.X += dx
	r.Y += dy
}

// Clip clamps r so that it lies inside bounds. A rectangle that lies
// entirely outside bounds collapses to a zero-size rectangle on the
// nearest edge.
func (r *Rect) Clip(bounds Rect) {
	x1 := min(max(r.X, bounds.X), bounds.X2())
	y1 := min(max(r.Y, bounds.Y), bounds.Y2())
	x2 := min(max(r.X2(), bounds.X), bounds.X2())
	y2 := min(max(r.Y2(), bounds.Y), bounds.Y2())
	r.X = x1
	r.Y = y1
	r.Width = x2 - x1
	r.Height = y2 - y1
}

func (r Rect) String() string {
	return fmt.Sprintf("(%v,%v %vx%v)", r.X, r.Y, r.Width, r.Height)
}
