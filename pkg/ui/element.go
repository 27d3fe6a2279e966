// Package ui implements the element tree: elements carrying dependency
// properties, the Measure/Arrange/Position layout protocol, a handful of
// core controls and the Presenter that drives the per-frame pipeline.
package ui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ultraviolet-go/upf/pkg/dependency"
	"github.com/ultraviolet-go/upf/pkg/event"
	"github.com/ultraviolet-go/upf/pkg/layout"
)

var (
	// ErrCycle reports an AddChild that would make an element its own
	// ancestor.
	ErrCycle = errors.New("ui: adding child would create a cycle")
	// ErrAlreadyParented reports an AddChild of an element that already has
	// a parent.
	ErrAlreadyParented = errors.New("ui: element already has a parent")
	// ErrNotChild reports a RemoveChild of an element with another parent.
	ErrNotChild = errors.New("ui: element is not a child")
	// ErrNilElement reports a nil element argument.
	ErrNilElement = errors.New("ui: nil element")
)

// Visual is implemented by every element type. Controls embed Element and
// inherit El.
type Visual interface {
	El() *Element
}

// Layouter is implemented by controls with custom layout. Both methods
// receive sizes with margin already removed and Width, Height, Min and Max
// already applied.
type Layouter interface {
	// MeasureOverride measures children and returns the desired content
	// size.
	MeasureOverride(available layout.Size) layout.Size
	// ArrangeOverride arranges children within final and returns the size
	// actually used.
	ArrangeOverride(final layout.Size) layout.Size
}

// Element is a node of the UI tree.
type Element struct {
	dependency.Object

	self     Visual
	name     string
	parent   *Element
	children []*Element
	depth    int

	presenter *Presenter

	classes []string
	pseudo  map[string]bool

	// ClassAdded and ClassRemoved are emitted with the class name.
	ClassAdded   event.List[string]
	ClassRemoved event.List[string]

	// Layout state. available and final are the last inputs from the
	// parent; desired and bounds are the outputs. bounds is relative to
	// the parent's top-left corner, absolute to the root.
	available    layout.Size
	desired      layout.Size
	final        layout.Rect
	bounds       layout.Rect
	absolute     layout.Point
	measured     bool
	arranged     bool
	measureValid bool
	arrangeValid bool
}

// NewElement creates a plain element with default layout: children are
// stacked on top of each other and sized to the largest.
func NewElement() *Element {
	e := &Element{}
	e.Init(ElementType, e)
	return e
}

// Init prepares an embedded element. self is the outermost struct, used
// to find a Layouter and other optional interfaces.
func (e *Element) Init(t *dependency.Type, self Visual) {
	e.Object.Init(t)
	e.Object.SetOwner(e)
	e.self = self
	e.Object.PropertyChanged.Add(e.onPropertyChanged)
}

// El returns e.
func (e *Element) El() *Element { return e }

// Self returns the outermost struct embedding e.
func (e *Element) Self() Visual { return e.self }

// Name returns the element name.
func (e *Element) Name() string { return e.name }

// SetName sets the element name used by style selectors and diagnostics.
func (e *Element) SetName(name string) {
	if e.name == name {
		return
	}
	e.name = name
	e.InvalidateStyle()
}

// TypeName returns the name of the element's dependency type.
func (e *Element) TypeName() string { return e.Type().Name() }

func (e *Element) String() string {
	if e.name != "" {
		return e.TypeName() + "#" + e.name
	}
	return e.TypeName()
}

// Depth returns the distance from the tree root.
func (e *Element) Depth() int { return e.depth }

// Parent returns the parent element, or nil.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the child elements. The slice must not be modified.
func (e *Element) Children() []*Element { return e.children }

// Presenter returns the presenter the element is attached to, or nil.
func (e *Element) Presenter() *Presenter { return e.presenter }

// AddChild appends v to e's children.
func (e *Element) AddChild(v Visual) error {
	return e.InsertChild(len(e.children), v)
}

// InsertChild inserts v at index.
func (e *Element) InsertChild(index int, v Visual) error {
	if v == nil || v.El() == nil {
		return ErrNilElement
	}
	child := v.El()
	if child.parent != nil {
		return fmt.Errorf("%w: %s under %s", ErrAlreadyParented, child, child.parent)
	}
	for a := e; a != nil; a = a.parent {
		if a == child {
			return fmt.Errorf("%w: %s under %s", ErrCycle, child, e)
		}
	}
	if index < 0 || index > len(e.children) {
		return fmt.Errorf("ui: child index %d out of range [0, %d]", index, len(e.children))
	}
	if err := child.Object.SetParent(&e.Object); err != nil {
		return err
	}
	child.parent = e
	e.children = slices.Insert(e.children, index, child)
	child.setDepth(e.depth + 1)
	if e.presenter != nil {
		child.attach(e.presenter)
		child.InvalidateStyle()
	}
	e.InvalidateMeasure()
	return nil
}

// RemoveChild detaches v from e. The detached subtree loses its bindings
// and animations and leaves every pipeline queue.
func (e *Element) RemoveChild(v Visual) error {
	if v == nil || v.El() == nil {
		return ErrNilElement
	}
	child := v.El()
	i := slices.Index(e.children, child)
	if i < 0 || child.parent != e {
		return fmt.Errorf("%w: %s of %s", ErrNotChild, child, e)
	}
	e.children = slices.Delete(e.children, i, i+1)
	child.parent = nil
	if err := child.Object.SetParent(nil); err != nil {
		return err
	}
	child.release()
	child.setDepth(0)
	e.InvalidateMeasure()
	return nil
}

// release detaches e's subtree from its presenter, drops every binding and
// animated layer and forgets previous layout results.
func (e *Element) release() {
	if p := e.presenter; p != nil {
		e.detach(p)
	}
	e.walk(func(d *Element) bool {
		d.Object.Release()
		d.measured, d.arranged = false, false
		d.measureValid, d.arrangeValid = false, false
		return true
	})
}

// RemoveFromParent detaches e from its parent, if any.
func (e *Element) RemoveFromParent() error {
	if e.parent == nil {
		return nil
	}
	return e.parent.RemoveChild(e)
}

// ClearChildren removes every child.
func (e *Element) ClearChildren() {
	for len(e.children) > 0 {
		_ = e.RemoveChild(e.children[len(e.children)-1])
	}
}

func (e *Element) setDepth(d int) {
	e.depth = d
	for _, c := range e.children {
		c.setDepth(d + 1)
	}
}

// walk visits e and its descendants depth-first. fn returns false to skip
// a subtree.
func (e *Element) walk(fn func(*Element) bool) {
	if !fn(e) {
		return
	}
	for _, c := range e.children {
		c.walk(fn)
	}
}

// Walk visits e and its descendants depth-first in child order. fn
// returns false to skip an element's children.
func (e *Element) Walk(fn func(*Element) bool) {
	e.walk(fn)
}

// Ancestors returns e's ancestors, nearest first.
func (e *Element) Ancestors() []*Element {
	var out []*Element
	for a := e.parent; a != nil; a = a.parent {
		out = append(out, a)
	}
	return out
}

// IsAncestorOf reports whether e is a strict ancestor of d.
func (e *Element) IsAncestorOf(d *Element) bool {
	for a := d.parent; a != nil; a = a.parent {
		if a == e {
			return true
		}
	}
	return false
}

// FindByName returns the first element in e's subtree with the given name.
func (e *Element) FindByName(name string) *Element {
	var found *Element
	e.walk(func(d *Element) bool {
		if found != nil {
			return false
		}
		if d.name == name {
			found = d
			return false
		}
		return true
	})
	return found
}

// Classes returns the style classes. The slice must not be modified.
func (e *Element) Classes() []string { return e.classes }

// HasClass reports whether e carries class c (case-insensitive).
func (e *Element) HasClass(c string) bool {
	return slices.ContainsFunc(e.classes, func(x string) bool { return strings.EqualFold(x, c) })
}

// AddClass adds style classes.
func (e *Element) AddClass(classes ...string) {
	changed := false
	for _, c := range classes {
		if c != "" && !e.HasClass(c) {
			e.classes = append(e.classes, c)
			changed = true
			e.ClassAdded.Emit(c)
		}
	}
	if changed {
		e.InvalidateStyle()
	}
}

// RemoveClass removes a style class.
func (e *Element) RemoveClass(c string) {
	i := slices.IndexFunc(e.classes, func(x string) bool { return strings.EqualFold(x, c) })
	if i < 0 {
		return
	}
	c = e.classes[i]
	e.classes = slices.Delete(e.classes, i, i+1)
	e.ClassRemoved.Emit(c)
	e.InvalidateStyle()
}

// PseudoClass reports whether a pseudo-class ("hover", "focus",
// "pressed") is active.
func (e *Element) PseudoClass(name string) bool {
	return e.pseudo[strings.ToLower(name)]
}

// SetPseudoClass toggles a pseudo-class and restyles e when it changes.
func (e *Element) SetPseudoClass(name string, on bool) {
	name = strings.ToLower(name)
	if e.pseudo[name] == on {
		return
	}
	if e.pseudo == nil {
		e.pseudo = make(map[string]bool)
	}
	if on {
		e.pseudo[name] = true
	} else {
		delete(e.pseudo, name)
	}
	e.InvalidateStyle()
}

// SetDataContext sets the binding source for e and its descendants.
func (e *Element) SetDataContext(v any) {
	e.Object.SetDataSource(v)
}

// DataContext returns the nearest binding source.
func (e *Element) DataContext() any {
	return e.Object.DataSource()
}

func (e *Element) onPropertyChanged(c dependency.Change) {
	opts := c.Property.Options()
	if opts.Has(dependency.AffectsMeasure) {
		e.InvalidateMeasure()
	}
	if opts.Has(dependency.AffectsArrange) {
		e.InvalidateArrange()
	}
	if opts.Has(dependency.AffectsPosition) {
		e.InvalidatePosition()
	}
	if opts.Has(dependency.AffectsStyle) {
		e.InvalidateStyle()
	}
}

// InvalidateMeasure marks e's desired size stale and queues e for the
// measure pass.
func (e *Element) InvalidateMeasure() {
	e.measureValid = false
	e.arrangeValid = false
	e.schedule(layout.PassMeasure)
}

// InvalidateArrange marks e's bounds stale and queues e for the arrange
// pass.
func (e *Element) InvalidateArrange() {
	e.arrangeValid = false
	e.schedule(layout.PassArrange)
}

// InvalidatePosition queues e for the position pass.
func (e *Element) InvalidatePosition() {
	e.schedule(layout.PassPosition)
}

// InvalidateStyle queues e (and, when processed, its descendants) for the
// style pass.
func (e *Element) InvalidateStyle() {
	e.schedule(layout.PassStyle)
}

// MeasureValid reports whether the desired size is current.
func (e *Element) MeasureValid() bool { return e.measureValid }

// ArrangeValid reports whether the bounds are current.
func (e *Element) ArrangeValid() bool { return e.arrangeValid }

func (e *Element) schedule(pass layout.Pass) {
	if e.presenter != nil {
		e.presenter.pipeline.Schedule(pass, e)
	}
}

func (e *Element) attach(p *Presenter) {
	e.walk(func(d *Element) bool {
		d.presenter = p
		d.Object.SetScheduler(dependency.SchedulerFunc(func(*dependency.Object) {
			p.pipeline.Schedule(layout.PassDigest, d)
		}))
		return true
	})
}

func (e *Element) detach(p *Presenter) {
	e.walk(func(d *Element) bool {
		p.pipeline.Unschedule(d)
		d.Object.SetScheduler(nil)
		d.presenter = nil
		p.Detached.Emit(d)
		return true
	})
}

// Set sets the local value of p on v.
func Set[T any](v Visual, p *dependency.Property[T], x T) {
	dependency.Set(&v.El().Object, p, x)
}

// Get returns v's effective value of p as of the last digest.
func Get[T any](v Visual, p *dependency.Property[T]) T {
	return dependency.Get(&v.El().Object, p)
}

// ValueOf returns v's trackable value of p.
func ValueOf[T any](v Visual, p *dependency.Property[T]) *dependency.Value[T] {
	return dependency.ValueOf(&v.El().Object, p)
}
