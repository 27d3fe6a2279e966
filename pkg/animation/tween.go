package animation

import (
	"math"

	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// LerpFunc interpolates between a and b at progress t. Eased progress may
// leave [0, 1] (back and elastic curves overshoot).
type LerpFunc[T any] func(a, b T, t float64) T

// LerpFloat64 linearly interpolates between two float64 values.
func LerpFloat64(a, b float64, t float64) float64 {
	return a + (b-a)*t
}

// LerpInt rounds the interpolated value.
func LerpInt(a, b int, t float64) int {
	return int(math.Round(LerpFloat64(float64(a), float64(b), t)))
}

// LerpPoint interpolates both coordinates.
func LerpPoint(a, b layout.Point, t float64) layout.Point {
	return layout.Point{X: LerpFloat64(a.X, b.X, t), Y: LerpFloat64(a.Y, b.Y, t)}
}

// LerpSize interpolates width and height.
func LerpSize(a, b layout.Size, t float64) layout.Size {
	return layout.Size{Width: LerpFloat64(a.Width, b.Width, t), Height: LerpFloat64(a.Height, b.Height, t)}
}

// LerpThickness interpolates every edge.
func LerpThickness(a, b layout.Thickness, t float64) layout.Thickness {
	return layout.Thickness{
		Left:   LerpFloat64(a.Left, b.Left, t),
		Top:    LerpFloat64(a.Top, b.Top, t),
		Right:  LerpFloat64(a.Right, b.Right, t),
		Bottom: LerpFloat64(a.Bottom, b.Bottom, t),
	}
}

// LerpColor interpolates each channel, clamping overshoot.
func LerpColor(a, b ui.Color, t float64) ui.Color {
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(255, LerpFloat64(float64(x), float64(y), t)))))
	}
	return ui.Color{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: ch(a.A, b.A)}
}

// LerpFor returns the built-in interpolator for T, or nil when T has
// none. Timelines without an interpolator switch to the end value when
// they complete.
func LerpFor[T any]() LerpFunc[T] {
	var zero T
	var fn any
	switch any(zero).(type) {
	case float64:
		fn = LerpFunc[float64](LerpFloat64)
	case int:
		fn = LerpFunc[int](LerpInt)
	case layout.Point:
		fn = LerpFunc[layout.Point](LerpPoint)
	case layout.Size:
		fn = LerpFunc[layout.Size](LerpSize)
	case layout.Thickness:
		fn = LerpFunc[layout.Thickness](LerpThickness)
	case ui.Color:
		fn = LerpFunc[ui.Color](LerpColor)
	default:
		return nil
	}
	return fn.(LerpFunc[T])
}
