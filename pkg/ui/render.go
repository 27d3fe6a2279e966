package ui

import (
	"github.com/ultraviolet-go/upf/pkg/layout"
)

// DrawingContext receives drawing commands in root coordinates. The host
// package implements it on an ebiten image.
type DrawingContext interface {
	FillRect(r layout.Rect, c Color)
	StrokeRect(r layout.Rect, t layout.Thickness, c Color)
	DrawText(s string, origin layout.Point, f Font, c Color)
}

// Renderer is implemented by elements that draw themselves. opacity is the
// product of the element's and its ancestors' Opacity.
type Renderer interface {
	Render(dc DrawingContext, opacity float64)
}

// Render draws the tree back to front. Hidden and Collapsed subtrees are
// skipped, as are subtrees whose accumulated opacity is zero. Children are
// drawn in Canvas.ZIndex order.
func (p *Presenter) Render(dc DrawingContext) {
	if p.root != nil {
		p.root.render(dc, 1)
	}
}

func (e *Element) render(dc DrawingContext, opacity float64) {
	if Get(e, VisibilityProperty) != Visible {
		return
	}
	opacity *= Get(e, OpacityProperty)
	if opacity <= 0 {
		return
	}
	if r, ok := e.self.(Renderer); ok {
		r.Render(dc, opacity)
	}
	for _, c := range e.renderOrder() {
		c.render(dc, opacity)
	}
}
