// Package input routes keyboard, text and mouse input to elements.
//
// A Router tracks keyboard focus, mouse capture and hover for one
// presenter. Raw input from the host is turned into events that bubble
// from the target element to the root until a handler marks them
// Handled:
//
//	r := input.NewRouter(presenter)
//	r.On(button).MouseDown.Add(func(e *input.MouseEvent) {
//	    e.Handled = true
//	})
//
// The router keeps the "focus", "hover" and "pressed" pseudo-classes of
// elements current, so stylesheets can react to them.
package input

import (
	"slices"

	"github.com/ultraviolet-go/upf/pkg/event"
	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/logging"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Pseudo-classes maintained by the router.
const (
	PseudoFocus   = "focus"
	PseudoHover   = "hover"
	PseudoPressed = "pressed"
)

// Router dispatches input for a presenter. Like the presenter it is used
// from a single goroutine.
type Router struct {
	presenter *ui.Presenter
	handlers  map[*ui.Element]*Handlers

	focused *ui.Element
	capture *ui.Element
	pressed *ui.Element
	hovered []*ui.Element
	mouse   layout.Point
	mods    Modifiers

	detached event.Handle

	// FocusChanged is emitted after every focus change.
	FocusChanged event.List[FocusEvent]
}

// NewRouter creates a router for p. Elements leaving p's tree lose focus,
// capture and hover.
func NewRouter(p *ui.Presenter) *Router {
	r := &Router{presenter: p, handlers: make(map[*ui.Element]*Handlers)}
	r.detached = p.Detached.Add(r.onDetached)
	return r
}

// Close stops tracking the presenter.
func (r *Router) Close() {
	r.presenter.Detached.Remove(r.detached)
}

// On returns the handler lists of v, creating them on first use.
func (r *Router) On(v ui.Visual) *Handlers {
	e := v.El()
	h := r.handlers[e]
	if h == nil {
		h = &Handlers{}
		r.handlers[e] = h
	}
	return h
}

// Forget drops every handler registered for v.
func (r *Router) Forget(v ui.Visual) {
	delete(r.handlers, v.El())
}

// Modifiers returns the modifier keys currently held.
func (r *Router) Modifiers() Modifiers { return r.mods }

// MousePosition returns the last pointer position.
func (r *Router) MousePosition() layout.Point { return r.mouse }

// Hovered returns the topmost element under the pointer, or nil.
func (r *Router) Hovered() *ui.Element {
	if len(r.hovered) == 0 {
		return nil
	}
	return r.hovered[0]
}

// KeyDown raises KeyDown on the focused element, or the root when nothing
// has focus. Unhandled Tab and arrow keys move focus. Reports whether the
// key was consumed.
func (r *Router) KeyDown(k Key, repeat bool) bool {
	r.mods |= modifierFor(k)
	ev := &KeyEvent{Key: k, Mods: r.mods, Repeat: repeat}
	if dispatch(r, r.keyTarget(), ev, func(h *Handlers) *event.List[*KeyEvent] { return &h.KeyDown }) {
		return true
	}
	switch k {
	case KeyTab:
		delta := 1
		if r.mods.Has(ModShift) {
			delta = -1
		}
		return r.MoveFocus(delta)
	case KeyArrowUp:
		return r.MoveFocusDirection(Up)
	case KeyArrowDown:
		return r.MoveFocusDirection(Down)
	case KeyArrowLeft:
		return r.MoveFocusDirection(Left)
	case KeyArrowRight:
		return r.MoveFocusDirection(Right)
	}
	return false
}

// KeyUp raises KeyUp on the focused element.
func (r *Router) KeyUp(k Key) bool {
	r.mods &^= modifierFor(k)
	ev := &KeyEvent{Key: k, Mods: r.mods}
	return dispatch(r, r.keyTarget(), ev, func(h *Handlers) *event.List[*KeyEvent] { return &h.KeyUp })
}

// Text raises Text on the focused element.
func (r *Router) Text(s string) bool {
	if s == "" {
		return false
	}
	return dispatch(r, r.keyTarget(), &TextEvent{Text: s}, func(h *Handlers) *event.List[*TextEvent] { return &h.Text })
}

// MouseMove updates hover and raises MouseMove on the element under the
// pointer, or on the capturing element.
func (r *Router) MouseMove(pt layout.Point) bool {
	r.mouse = pt
	r.updateHover(pt)
	ev := &MouseEvent{Position: pt, Mods: r.mods}
	return dispatch(r, r.mouseTarget(pt), ev, func(h *Handlers) *event.List[*MouseEvent] { return &h.MouseMove })
}

// MouseDown raises MouseDown. A left press focuses the nearest focusable
// ancestor-or-self of the target and marks it pressed.
func (r *Router) MouseDown(pt layout.Point, b MouseButton) bool {
	r.mouse = pt
	target := r.mouseTarget(pt)
	if b == MouseLeft && target != nil {
		if f := nearest(target, r.canFocus); f != nil {
			r.Focus(f)
		}
		r.setPressed(target)
	}
	ev := &MouseEvent{Position: pt, Button: b, Mods: r.mods}
	return dispatch(r, target, ev, func(h *Handlers) *event.List[*MouseEvent] { return &h.MouseDown })
}

// MouseUp raises MouseUp and clears the pressed state.
func (r *Router) MouseUp(pt layout.Point, b MouseButton) bool {
	r.mouse = pt
	target := r.mouseTarget(pt)
	if b == MouseLeft {
		r.setPressed(nil)
	}
	ev := &MouseEvent{Position: pt, Button: b, Mods: r.mods}
	return dispatch(r, target, ev, func(h *Handlers) *event.List[*MouseEvent] { return &h.MouseUp })
}

// MouseWheel raises MouseWheel at the pointer.
func (r *Router) MouseWheel(dx, dy float64) bool {
	ev := &MouseEvent{Position: r.mouse, Mods: r.mods, WheelX: dx, WheelY: dy}
	return dispatch(r, r.mouseTarget(r.mouse), ev, func(h *Handlers) *event.List[*MouseEvent] { return &h.MouseWheel })
}

// Capture routes every mouse event to v until ReleaseCapture. Only
// elements attached to the presenter can capture.
func (r *Router) Capture(v ui.Visual) bool {
	e := v.El()
	if e.Presenter() != r.presenter {
		return false
	}
	r.capture = e
	return true
}

// ReleaseCapture ends mouse capture.
func (r *Router) ReleaseCapture() { r.capture = nil }

// Captured returns the capturing element, or nil.
func (r *Router) Captured() *ui.Element { return r.capture }

func (r *Router) keyTarget() *ui.Element {
	if r.focused != nil {
		return r.focused
	}
	return r.presenter.Root()
}

func (r *Router) mouseTarget(pt layout.Point) *ui.Element {
	if r.capture != nil {
		return r.capture
	}
	return nearest(r.presenter.HitTest(pt), enabled)
}

// dispatch bubbles ev from target to the root and reports whether a
// handler marked it handled. Disabled elements are skipped.
func dispatch[E routedEvent](r *Router, target *ui.Element, ev E, list func(*Handlers) *event.List[E]) bool {
	if target == nil {
		return false
	}
	base := ev.routed()
	base.Source = target
	for e := target; e != nil && !base.Handled; e = e.Parent() {
		if !enabled(e) {
			continue
		}
		h := r.handlers[e]
		if h == nil {
			continue
		}
		base.Current = e
		list(h).Emit(ev)
	}
	if base.Handled {
		logging.Logger().Debug("input handled", "source", target, "by", base.Current)
	}
	return base.Handled
}

func (r *Router) updateHover(pt layout.Point) {
	var path []*ui.Element
	if r.capture == nil {
		var hit ui.HitTestResult
		r.presenter.HitTestAll(pt, &hit)
		path = hit.Path
	} else {
		path = append([]*ui.Element{r.capture}, r.capture.Ancestors()...)
	}
	for _, e := range r.hovered {
		if !slices.Contains(path, e) {
			e.SetPseudoClass(PseudoHover, false)
			r.emitDirect(e, &MouseEvent{Position: pt}, func(h *Handlers) *event.List[*MouseEvent] { return &h.MouseLeave })
		}
	}
	for _, e := range path {
		if !slices.Contains(r.hovered, e) {
			e.SetPseudoClass(PseudoHover, true)
			r.emitDirect(e, &MouseEvent{Position: pt}, func(h *Handlers) *event.List[*MouseEvent] { return &h.MouseEnter })
		}
	}
	r.hovered = path
}

// emitDirect raises a non-bubbling event on e alone.
func (r *Router) emitDirect(e *ui.Element, ev *MouseEvent, list func(*Handlers) *event.List[*MouseEvent]) {
	h := r.handlers[e]
	if h == nil {
		return
	}
	ev.Source, ev.Current = e, e
	list(h).Emit(ev)
}

func (r *Router) setPressed(e *ui.Element) {
	if r.pressed == e {
		return
	}
	if r.pressed != nil {
		r.pressed.SetPseudoClass(PseudoPressed, false)
	}
	r.pressed = e
	if e != nil {
		e.SetPseudoClass(PseudoPressed, true)
	}
}

func (r *Router) onDetached(e *ui.Element) {
	if r.focused == e {
		r.setFocus(nil)
	}
	if r.capture == e {
		r.capture = nil
	}
	if r.pressed == e {
		r.setPressed(nil)
	}
	if i := slices.Index(r.hovered, e); i >= 0 {
		e.SetPseudoClass(PseudoHover, false)
		r.hovered = slices.Delete(r.hovered, i, i+1)
	}
}

func modifierFor(k Key) Modifiers {
	switch k {
	case KeyShift:
		return ModShift
	case KeyControl:
		return ModControl
	case KeyAlt:
		return ModAlt
	}
	return 0
}

func enabled(e *ui.Element) bool {
	return ui.Get(e, ui.IsEnabledProperty)
}

// nearest returns the first of e and its ancestors satisfying ok.
func nearest(e *ui.Element, ok func(*ui.Element) bool) *ui.Element {
	for ; e != nil; e = e.Parent() {
		if ok(e) {
			return e
		}
	}
	return nil
}
