package ui

import (
	"github.com/ultraviolet-go/upf/pkg/layout"
)

// HitTestResult lists the elements under a point, topmost first. Each
// entry is followed by its ancestors.
type HitTestResult struct {
	Path []*Element
}

// Target returns the topmost element, or nil.
func (r *HitTestResult) Target() *Element {
	if len(r.Path) == 0 {
		return nil
	}
	return r.Path[0]
}

// HitTest returns the topmost visible, hit-test-visible element
// containing pt, or nil.
func (p *Presenter) HitTest(pt layout.Point) *Element {
	var r HitTestResult
	p.HitTestAll(pt, &r)
	return r.Target()
}

// HitTestAll fills r with the hit path at pt and reports whether anything
// was hit.
func (p *Presenter) HitTestAll(pt layout.Point, r *HitTestResult) bool {
	if p.root == nil {
		return false
	}
	return p.root.hitTest(pt, r)
}

// hitTest tests children in reverse render order, then e itself. Elements
// without a Renderer are transparent to hits unless a child is hit.
func (e *Element) hitTest(pt layout.Point, r *HitTestResult) bool {
	if Get(e, VisibilityProperty) != Visible || !Get(e, IsHitTestVisibleProperty) {
		return false
	}
	order := e.renderOrder()
	for i := len(order) - 1; i >= 0; i-- {
		if order[i].hitTest(pt, r) {
			r.Path = append(r.Path, e)
			return true
		}
	}
	if _, ok := e.self.(Renderer); !ok {
		return false
	}
	if !e.AbsoluteBounds().Contains(pt) {
		return false
	}
	r.Path = append(r.Path, e)
	return true
}
