package ui

import (
	"math"

	"github.com/ultraviolet-go/upf/pkg/layout"
)

// DesiredSize returns the size computed by the last Measure, including
// margin.
func (e *Element) DesiredSize() layout.Size { return e.desired }

// Bounds returns the arranged rectangle relative to the parent, excluding
// margin.
func (e *Element) Bounds() layout.Rect { return e.bounds }

// RenderSize returns the arranged size.
func (e *Element) RenderSize() layout.Size { return e.bounds.Size() }

// AbsolutePosition returns the top-left corner relative to the root, as
// of the last position pass.
func (e *Element) AbsolutePosition() layout.Point { return e.absolute }

// AbsoluteBounds returns the arranged rectangle relative to the root.
func (e *Element) AbsoluteBounds() layout.Rect {
	return layout.RectFromPointSize(e.absolute, e.bounds.Size())
}

// Measure computes the desired size for the available space. It returns
// immediately when the measure is still valid for the same input.
func (e *Element) Measure(available layout.Size) {
	if e.measured && e.measureValid && e.available.Equal(available) {
		return
	}
	e.available, e.measured, e.measureValid = available, true, true
	e.arrangeValid = false
	if e.presenter != nil {
		e.presenter.pipeline.Cancel(layout.PassMeasure, e)
	}

	if Get(e, VisibilityProperty) == Collapsed {
		e.desired = layout.Size{}
		return
	}
	margin := Get(e, MarginProperty)
	inner := e.constrain(available.Deflate(margin))

	var content layout.Size
	if l, ok := e.self.(Layouter); ok {
		content = l.MeasureOverride(inner)
	} else {
		content = e.measureChildren(inner)
	}

	size := e.constrain(content).Min(inner)
	e.desired = size.Inflate(margin)
}

// constrain applies Width/Height and Min/Max. An unset Width or Height
// leaves the incoming, possibly infinite, extent in place.
func (e *Element) constrain(s layout.Size) layout.Size {
	w, h := Get(e, WidthProperty), Get(e, HeightProperty)
	if !math.IsNaN(w) {
		s.Width = w
	}
	if !math.IsNaN(h) {
		s.Height = h
	}
	s.Width = clamp(s.Width, Get(e, MinWidthProperty), Get(e, MaxWidthProperty))
	s.Height = clamp(s.Height, Get(e, MinHeightProperty), Get(e, MaxHeightProperty))
	return s
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(v, hi))
}

func (e *Element) measureChildren(available layout.Size) layout.Size {
	var size layout.Size
	for _, c := range e.children {
		c.Measure(available)
		size = size.Max(c.desired)
	}
	return size
}

// Arrange positions e inside final, a slot in the parent's coordinate
// space that includes margin. It returns immediately when the arrange is
// still valid for the same slot.
func (e *Element) Arrange(final layout.Rect) {
	if e.arranged && e.arrangeValid && e.final == final {
		return
	}
	if !e.measured {
		e.Measure(final.Size())
	}
	e.final, e.arranged, e.arrangeValid = final, true, true
	if e.presenter != nil {
		e.presenter.pipeline.Cancel(layout.PassArrange, e)
	}
	old := e.bounds

	if Get(e, VisibilityProperty) == Collapsed {
		e.bounds = layout.Rect{X: final.X, Y: final.Y}
	} else {
		margin := Get(e, MarginProperty)
		slot := final.Deflate(margin)
		want := e.desired.Deflate(margin)
		hAlign, vAlign := Get(e, HorizontalAlignmentProperty), Get(e, VerticalAlignmentProperty)

		size := want
		if hAlign == AlignStretch {
			size.Width = slot.Width
		}
		if vAlign == AlignStretch {
			size.Height = slot.Height
		}
		size = e.constrain(size)

		if l, ok := e.self.(Layouter); ok {
			size = l.ArrangeOverride(size)
		} else {
			e.arrangeChildren(size)
		}

		e.bounds = layout.Rect{
			X:      slot.X + alignOffset(hAlign, slot.Width, size.Width),
			Y:      slot.Y + alignOffset(vAlign, slot.Height, size.Height),
			Width:  size.Width,
			Height: size.Height,
		}
	}
	if e.bounds != old {
		e.InvalidatePosition()
	}
}

func alignOffset(a Alignment, slot, size float64) float64 {
	free := slot - size
	switch a {
	case AlignStart:
		return 0
	case AlignEnd:
		return free
	default:
		if free < 0 {
			// Oversized content is anchored at the start rather than
			// centered off both edges.
			return 0
		}
		return free / 2
	}
}

func (e *Element) arrangeChildren(size layout.Size) {
	for _, c := range e.children {
		c.Arrange(layout.RectFromPointSize(layout.Point{}, size))
	}
}

// updatePosition recomputes absolute positions for e's subtree.
func (e *Element) updatePosition() {
	var base layout.Point
	if e.parent != nil {
		base = e.parent.absolute
	}
	e.absolute = base.Add(e.bounds.Position())
	for _, c := range e.children {
		if e.presenter != nil {
			e.presenter.pipeline.Cancel(layout.PassPosition, c)
		}
		c.updatePosition()
	}
}
