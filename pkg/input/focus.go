package input

import (
	"math"

	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Direction is a directional focus move.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Focused returns the element with keyboard focus, or nil.
func (r *Router) Focused() *ui.Element { return r.focused }

// Focus gives v keyboard focus. Only attached, visible, enabled elements
// with Focusable set can take focus. Reports whether v has focus
// afterwards.
func (r *Router) Focus(v ui.Visual) bool {
	e := v.El()
	if !r.canFocus(e) {
		return false
	}
	r.setFocus(e)
	return true
}

// ClearFocus removes keyboard focus.
func (r *Router) ClearFocus() { r.setFocus(nil) }

// MoveFocus moves focus delta steps through the focusable elements in
// tree order, wrapping at either end.
func (r *Router) MoveFocus(delta int) bool {
	nodes := r.focusables()
	if len(nodes) == 0 || delta == 0 {
		return false
	}
	current := -1
	for i, n := range nodes {
		if n == r.focused {
			current = i
			break
		}
	}
	if current < 0 && delta < 0 {
		current = 0
	}
	next := wrapIndex(current+delta, len(nodes))
	r.setFocus(nodes[next])
	return true
}

// MoveFocusDirection moves focus to the closest focusable element in
// direction d, preferring elements aligned with the focused one. Without a
// candidate it falls back to linear order.
func (r *Router) MoveFocusDirection(d Direction) bool {
	if r.focused == nil {
		return r.MoveFocus(1)
	}
	current := r.focused.AbsoluteBounds()
	if current.IsEmpty() {
		return r.MoveFocus(linearDelta(d))
	}

	var best *ui.Element
	bestScore := math.MaxFloat64
	for _, n := range r.focusables() {
		if n == r.focused {
			continue
		}
		b := n.AbsoluteBounds()
		if b.IsEmpty() || !isInDirection(current, b, d) {
			continue
		}
		if score := directionalScore(current, b, d); score < bestScore {
			bestScore = score
			best = n
		}
	}
	if best == nil {
		return r.MoveFocus(linearDelta(d))
	}
	r.setFocus(best)
	return true
}

func (r *Router) canFocus(e *ui.Element) bool {
	if e == nil || e.Presenter() != r.presenter {
		return false
	}
	if !ui.Get(e, ui.FocusableProperty) || !enabled(e) {
		return false
	}
	for a := e; a != nil; a = a.Parent() {
		if ui.Get(a, ui.VisibilityProperty) != ui.Visible {
			return false
		}
	}
	return true
}

func (r *Router) focusables() []*ui.Element {
	root := r.presenter.Root()
	if root == nil {
		return nil
	}
	var out []*ui.Element
	root.Walk(func(e *ui.Element) bool {
		if ui.Get(e, ui.VisibilityProperty) != ui.Visible {
			return false
		}
		if r.canFocus(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (r *Router) setFocus(e *ui.Element) {
	old := r.focused
	if old == e {
		return
	}
	r.focused = e
	ev := FocusEvent{Old: old, New: e}
	if old != nil {
		old.SetPseudoClass(PseudoFocus, false)
		if h := r.handlers[old]; h != nil {
			h.LostFocus.Emit(ev)
		}
	}
	if e != nil {
		e.SetPseudoClass(PseudoFocus, true)
		if h := r.handlers[e]; h != nil {
			h.GotFocus.Emit(ev)
		}
	}
	r.FocusChanged.Emit(ev)
}

func linearDelta(d Direction) int {
	if d == Up || d == Left {
		return -1
	}
	return 1
}

func center(r layout.Rect) (x, y float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func isInDirection(source, target layout.Rect, d Direction) bool {
	sx, sy := center(source)
	tx, ty := center(target)
	switch d {
	case Up:
		return ty < sy
	case Down:
		return ty > sy
	case Left:
		return tx < sx
	case Right:
		return tx > sx
	}
	return false
}

// directionalScore is lower for closer targets. Cross-axis distance
// weighs double so aligned elements win.
func directionalScore(source, target layout.Rect, d Direction) float64 {
	sx, sy := center(source)
	tx, ty := center(target)
	primary, cross := math.Abs(tx-sx), math.Abs(ty-sy)
	if d == Up || d == Down {
		primary, cross = cross, primary
	}
	return primary + cross*2
}

func wrapIndex(index, count int) int {
	index %= count
	if index < 0 {
		index += count
	}
	return index
}
