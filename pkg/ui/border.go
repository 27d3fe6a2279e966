package ui

import (
	"github.com/ultraviolet-go/upf/pkg/layout"
)

// Border draws a background and outline around a single child.
type Border struct {
	Element
}

// NewBorder creates a border around child, which may be nil.
func NewBorder(child Visual) *Border {
	b := &Border{}
	b.Init(BorderType, b)
	if child != nil {
		_ = b.SetChild(child)
	}
	return b
}

// Child returns the content element, or nil.
func (b *Border) Child() *Element {
	if len(b.children) == 0 {
		return nil
	}
	return b.children[0]
}

// SetChild replaces the content element. Nil removes it.
func (b *Border) SetChild(v Visual) error {
	b.ClearChildren()
	if v == nil {
		return nil
	}
	return b.AddChild(v)
}

func (b *Border) chrome() layout.Thickness {
	t, p := Get(b, BorderThicknessProperty), Get(b, PaddingProperty)
	return layout.Thickness{
		Left:   t.Left + p.Left,
		Top:    t.Top + p.Top,
		Right:  t.Right + p.Right,
		Bottom: t.Bottom + p.Bottom,
	}
}

// MeasureOverride measures the child inside border thickness and padding.
func (b *Border) MeasureOverride(available layout.Size) layout.Size {
	chrome := b.chrome()
	var content layout.Size
	if c := b.Child(); c != nil {
		c.Measure(available.Deflate(chrome))
		content = c.DesiredSize()
	}
	return content.Inflate(chrome)
}

// ArrangeOverride arranges the child in the area inside the chrome.
func (b *Border) ArrangeOverride(final layout.Size) layout.Size {
	if c := b.Child(); c != nil {
		inner := layout.RectFromPointSize(layout.Point{}, final).Deflate(b.chrome())
		c.Arrange(inner)
	}
	return final
}

// Render paints the background and the outline.
func (b *Border) Render(dc DrawingContext, opacity float64) {
	r := b.AbsoluteBounds()
	if bg := Get(b, BorderBackgroundProperty); !bg.IsTransparent() {
		dc.FillRect(r, bg.WithOpacity(opacity))
	}
	if brush := Get(b, BorderBrushProperty); !brush.IsTransparent() {
		if t := Get(b, BorderThicknessProperty); t != (layout.Thickness{}) {
			dc.StrokeRect(r, t, brush.WithOpacity(opacity))
		}
	}
}
