package ui

import (
	"cmp"
	"math"
	"slices"

	"github.com/ultraviolet-go/upf/pkg/layout"
)

// Panel is an element that overlays its children and paints an optional
// background.
type Panel struct {
	Element
}

// NewPanel creates an empty panel.
func NewPanel() *Panel {
	p := &Panel{}
	p.Init(PanelType, p)
	return p
}

// Render paints the background.
func (p *Panel) Render(dc DrawingContext, opacity float64) {
	if bg := Get(p, BackgroundProperty); !bg.IsTransparent() {
		dc.FillRect(p.AbsoluteBounds(), bg.WithOpacity(opacity))
	}
}

// StackPanel lays out children in a single line.
type StackPanel struct {
	Panel
}

// NewStackPanel creates a stack panel with the given orientation.
func NewStackPanel(o Orientation) *StackPanel {
	s := &StackPanel{}
	s.Init(StackPanelType, s)
	if o != Vertical {
		Set(s, OrientationProperty, o)
	}
	return s
}

// MeasureOverride gives every child unbounded space along the stacking
// axis.
func (s *StackPanel) MeasureOverride(available layout.Size) layout.Size {
	horizontal := Get(s, OrientationProperty) == Horizontal
	spacing := Get(s, SpacingProperty)
	padding := Get(s, PaddingProperty)
	inner := available.Deflate(padding)
	childAvail := inner
	if horizontal {
		childAvail.Width = math.Inf(1)
	} else {
		childAvail.Height = math.Inf(1)
	}

	var size layout.Size
	n := 0
	for _, c := range s.children {
		c.Measure(childAvail)
		if Get(c, VisibilityProperty) == Collapsed {
			continue
		}
		if n > 0 {
			if horizontal {
				size.Width += spacing
			} else {
				size.Height += spacing
			}
		}
		n++
		d := c.DesiredSize()
		if horizontal {
			size.Width += d.Width
			size.Height = math.Max(size.Height, d.Height)
		} else {
			size.Height += d.Height
			size.Width = math.Max(size.Width, d.Width)
		}
	}
	return size.Inflate(padding)
}

// ArrangeOverride places children one after another.
func (s *StackPanel) ArrangeOverride(final layout.Size) layout.Size {
	horizontal := Get(s, OrientationProperty) == Horizontal
	spacing := Get(s, SpacingProperty)
	padding := Get(s, PaddingProperty)
	inner := final.Deflate(padding)

	offset := 0.0
	n := 0
	for _, c := range s.children {
		if Get(c, VisibilityProperty) == Collapsed {
			c.Arrange(layout.Rect{X: padding.Left, Y: padding.Top})
			continue
		}
		if n > 0 {
			offset += spacing
		}
		n++
		d := c.DesiredSize()
		if horizontal {
			c.Arrange(layout.Rect{X: padding.Left + offset, Y: padding.Top, Width: d.Width, Height: inner.Height})
			offset += d.Width
		} else {
			c.Arrange(layout.Rect{X: padding.Left, Y: padding.Top + offset, Width: inner.Width, Height: d.Height})
			offset += d.Height
		}
	}
	return final
}

// Canvas positions children at their Canvas.Left and Canvas.Top values.
// It claims no space of its own during measure.
type Canvas struct {
	Panel
}

// NewCanvas creates an empty canvas.
func NewCanvas() *Canvas {
	c := &Canvas{}
	c.Init(CanvasType, c)
	return c
}

// SetPosition sets the Canvas.Left and Canvas.Top attached properties of v.
func SetPosition(v Visual, left, top float64) {
	Set(v, LeftProperty, left)
	Set(v, TopProperty, top)
}

// MeasureOverride measures every child with unbounded space.
func (c *Canvas) MeasureOverride(layout.Size) layout.Size {
	for _, ch := range c.children {
		ch.Measure(layout.Infinite)
	}
	return layout.Size{}
}

// ArrangeOverride places every child at its desired size. An unset Left
// or Top is treated as zero.
func (c *Canvas) ArrangeOverride(final layout.Size) layout.Size {
	for _, ch := range c.children {
		x, y := Get(ch, LeftProperty), Get(ch, TopProperty)
		if math.IsNaN(x) {
			x = 0
		}
		if math.IsNaN(y) {
			y = 0
		}
		ch.Arrange(layout.RectFromPointSize(layout.Point{X: x, Y: y}, ch.DesiredSize()))
	}
	return final
}

// renderOrder returns children sorted by Canvas.ZIndex, keeping child
// order for equal values.
func (e *Element) renderOrder() []*Element {
	sorted := true
	for i := 1; i < len(e.children); i++ {
		if zindex(e.children[i]) < zindex(e.children[i-1]) {
			sorted = false
			break
		}
	}
	if sorted {
		return e.children
	}
	out := slices.Clone(e.children)
	slices.SortStableFunc(out, func(a, b *Element) int { return cmp.Compare(zindex(a), zindex(b)) })
	return out
}

func zindex(e *Element) int { return Get(e, ZIndexProperty) }
