package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// Point is a position in device-independent pixels.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is a width and height in device-independent pixels. Either
// component may be +Inf when the available space is unbounded.
type Size struct {
	Width  float64
	Height float64
}

// Infinite is the unbounded available size.
var Infinite = Size{Width: math.Inf(1), Height: math.Inf(1)}

// Deflate shrinks s by t, clamping at zero.
func (s Size) Deflate(t Thickness) Size {
	return Size{
		Width:  math.Max(0, s.Width-t.Left-t.Right),
		Height: math.Max(0, s.Height-t.Top-t.Bottom),
	}
}

// Inflate grows s by t.
func (s Size) Inflate(t Thickness) Size {
	return Size{Width: s.Width + t.Left + t.Right, Height: s.Height + t.Top + t.Bottom}
}

// Min returns the component-wise minimum.
func (s Size) Min(o Size) Size {
	return Size{Width: math.Min(s.Width, o.Width), Height: math.Min(s.Height, o.Height)}
}

// Max returns the component-wise maximum.
func (s Size) Max(o Size) Size {
	return Size{Width: math.Max(s.Width, o.Width), Height: math.Max(s.Height, o.Height)}
}

// Equal compares sizes within epsilon. Infinite components are equal to
// each other.
func (s Size) Equal(o Size) bool {
	return floatEqual(s.Width, o.Width) && floatEqual(s.Height, o.Height)
}

// Rect is a rectangle using left, top, width and height.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RectFromPointSize builds a Rect.
func RectFromPointSize(p Point, s Size) Rect {
	return Rect{X: p.X, Y: p.Y, Width: s.Width, Height: s.Height}
}

// Position returns the top-left corner.
func (r Rect) Position() Point { return Point{X: r.X, Y: r.Y} }

// Size returns the rectangle's size.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Right returns X + Width.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns Y + Height.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X < r.Right() && p.Y < r.Bottom()
}

// Translate returns r moved by p.
func (r Rect) Translate(p Point) Rect {
	return Rect{X: r.X + p.X, Y: r.Y + p.Y, Width: r.Width, Height: r.Height}
}

// Deflate shrinks r by t on every side.
func (r Rect) Deflate(t Thickness) Rect {
	s := r.Size().Deflate(t)
	return Rect{X: r.X + t.Left, Y: r.Y + t.Top, Width: s.Width, Height: s.Height}
}

// Intersect returns the overlap of r and o, or an empty Rect.
func (r Rect) Intersect(o Rect) Rect {
	left := math.Max(r.X, o.X)
	top := math.Max(r.Y, o.Y)
	right := math.Min(r.Right(), o.Right())
	bottom := math.Min(r.Bottom(), o.Bottom())
	if left >= right || top >= bottom {
		return Rect{}
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Thickness is a per-edge distance used for margins, padding and borders.
type Thickness struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Uniform returns a Thickness with every edge set to v.
func Uniform(v float64) Thickness {
	return Thickness{Left: v, Top: v, Right: v, Bottom: v}
}

// Horizontal returns Left + Right.
func (t Thickness) Horizontal() float64 { return t.Left + t.Right }

// Vertical returns Top + Bottom.
func (t Thickness) Vertical() float64 { return t.Top + t.Bottom }

// UnmarshalText parses "all", "horizontal,vertical" or
// "left,top,right,bottom". Commas and spaces both separate values.
func (t *Thickness) UnmarshalText(text []byte) error {
	fields := strings.FieldsFunc(string(text), func(r rune) bool { return r == ',' || r == ' ' })
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64)
		if err != nil {
			return fmt.Errorf("thickness %q: %w", text, err)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		*t = Uniform(vals[0])
	case 2:
		*t = Thickness{Left: vals[0], Top: vals[1], Right: vals[0], Bottom: vals[1]}
	case 4:
		*t = Thickness{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}
	default:
		return fmt.Errorf("thickness %q: want 1, 2 or 4 values", text)
	}
	return nil
}

// floatEqual returns true if two float64 values are approximately equal.
func floatEqual(a, b float64) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= epsilon
}
