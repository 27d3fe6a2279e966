// Package dependency implements dependency properties: typed properties
// registered per owner type whose effective value is computed from layered
// sources (animated, local or binding, styled, inherited, default).
//
// Setting a layer never recomputes anything. It marks the value pending
// and asks the object's Scheduler to digest the object; Digest then
// recomputes the effective value, compares it with the cached one and
// fires change notifications only when it differs. Inherited properties
// propagate to descendants synchronously during the digest that changed
// them.
//
// Objects are not safe for concurrent use. The whole tree is owned by the
// goroutine driving the pipeline.
package dependency

import (
	"errors"
	"reflect"
	"sort"

	"github.com/ultraviolet-go/upf/pkg/event"
)

// ErrCycle reports a parent assignment that would make an object its own
// ancestor.
var ErrCycle = errors.New("dependency: parent would create a cycle")

// Scheduler is asked to digest an object that has pending values.
type Scheduler interface {
	ScheduleDigest(o *Object)
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(o *Object)

// ScheduleDigest calls f(o).
func (f SchedulerFunc) ScheduleDigest(o *Object) { f(o) }

// Change describes a digested change of an effective value.
type Change struct {
	Object   *Object
	Property Key
	Old, New any
}

// slot is the type-erased view of a *Value[T].
type slot interface {
	key() Key
	effective() any
	valueSource() ValueSource
	bound() bool
	styledSet() bool
	digestAny() bool
	setStyledAny(x any) error
	setLocalAny(x any) error
	bindAny(expr string, sourceType reflect.Type, mode BindingMode) error
	clearStyledAny()
	release()
}

// Object owns the trackable values of one node. It may be embedded; call
// Init before use in that case.
type Object struct {
	typ      *Type
	parent   *Object
	children []*Object

	values  map[int]slot
	pending map[int]slot

	scheduler Scheduler

	dataSource    any
	hasDataSource bool

	owner any

	// PropertyChanged is emitted after every effective value change, after
	// the property's own Changed callback.
	PropertyChanged event.List[Change]
}

// NewObject creates an object of type t.
func NewObject(t *Type) *Object {
	o := &Object{}
	o.Init(t)
	return o
}

// Init prepares an embedded object.
func (o *Object) Init(t *Type) {
	o.typ = t
	o.values = make(map[int]slot)
}

// Owner returns the value registered with SetOwner, typically the struct
// embedding o.
func (o *Object) Owner() any { return o.owner }

// SetOwner records the struct embedding o.
func (o *Object) SetOwner(v any) { o.owner = v }

// Type returns the object's type.
func (o *Object) Type() *Type { return o.typ }

// Parent returns the inheritance parent, or nil.
func (o *Object) Parent() *Object { return o.parent }

// Children returns the inheritance children. The slice must not be
// modified.
func (o *Object) Children() []*Object { return o.children }

// SetParent moves o under p (nil detaches). Inherited values are
// recomputed for o and its descendants immediately and bound values are
// scheduled for re-evaluation, since the data source may have changed.
func (o *Object) SetParent(p *Object) error {
	if p == o.parent {
		return nil
	}
	for a := p; a != nil; a = a.parent {
		if a == o {
			return ErrCycle
		}
	}

	// An inherited value can only differ from its default if some
	// ancestor holds a slot for it.
	keys := inheritedKeys(o.parent, p)
	olds := make([]any, len(keys))
	for i, k := range keys {
		olds[i] = o.GetAny(k)
	}

	if old := o.parent; old != nil {
		for i, c := range old.children {
			if c == o {
				old.children = append(old.children[:i:i], old.children[i+1:]...)
				break
			}
		}
	}
	o.parent = p
	if p != nil {
		p.children = append(p.children, o)
	}

	for i, k := range keys {
		o.inheritedChanged(k, olds[i])
	}
	o.invalidateBindings()
	return nil
}

func inheritedKeys(chains ...*Object) []Key {
	seen := make(map[int]bool)
	var keys []Key
	for _, start := range chains {
		for a := start; a != nil; a = a.parent {
			for id, s := range a.values {
				if seen[id] || !s.key().Options().Has(Inherits) {
					continue
				}
				seen[id] = true
				keys = append(keys, s.key())
			}
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].ID() < keys[j].ID() })
	return keys
}

// SetScheduler installs the digest scheduler. Values already pending are
// scheduled at once.
func (o *Object) SetScheduler(s Scheduler) {
	o.scheduler = s
	if s != nil && len(o.pending) > 0 {
		s.ScheduleDigest(o)
	}
}

// Scheduler returns the installed scheduler.
func (o *Object) Scheduler() Scheduler { return o.scheduler }

// DataSource returns the nearest data source set on o or an ancestor.
func (o *Object) DataSource() any {
	for a := o; a != nil; a = a.parent {
		if a.hasDataSource {
			return a.dataSource
		}
	}
	return nil
}

// SetDataSource sets the data source for o and descendants that have no
// data source of their own. Bound values in the subtree are rescheduled.
func (o *Object) SetDataSource(src any) {
	o.dataSource, o.hasDataSource = src, true
	o.invalidateBindings()
}

// ClearDataSource removes o's own data source.
func (o *Object) ClearDataSource() {
	if !o.hasDataSource {
		return
	}
	o.dataSource, o.hasDataSource = nil, false
	o.invalidateBindings()
}

// InvalidateBindings reschedules every bound value on o and its
// descendants, for example after the data source was mutated in place.
func (o *Object) InvalidateBindings() {
	o.invalidateBindings()
}

func (o *Object) invalidateBindings() {
	for _, s := range o.values {
		if s.bound() {
			o.markPending(s)
		}
	}
	for _, c := range o.children {
		c.invalidateBindings()
	}
}

func (o *Object) markPending(s slot) {
	if o.pending == nil {
		o.pending = make(map[int]slot)
	}
	id := s.key().ID()
	if _, ok := o.pending[id]; ok {
		return
	}
	o.pending[id] = s
	if o.scheduler != nil {
		o.scheduler.ScheduleDigest(o)
	}
}

func (o *Object) clearPending(id int) {
	delete(o.pending, id)
}

// HasPending reports whether any value awaits a digest.
func (o *Object) HasPending() bool { return len(o.pending) > 0 }

// DigestPending digests every pending value in property ID order and
// returns how many changed. Values marked pending by change callbacks
// during the call stay pending and are rescheduled.
func (o *Object) DigestPending() int {
	if len(o.pending) == 0 {
		return 0
	}
	ids := make([]int, 0, len(o.pending))
	for id := range o.pending {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	batch := make([]slot, len(ids))
	for i, id := range ids {
		batch[i] = o.pending[id]
	}
	for _, id := range ids {
		delete(o.pending, id)
	}

	changed := 0
	for _, s := range batch {
		if s.digestAny() {
			changed++
		}
	}
	if len(o.pending) > 0 && o.scheduler != nil {
		o.scheduler.ScheduleDigest(o)
	}
	return changed
}

// DigestAll digests every value o holds, pending or not.
func (o *Object) DigestAll() int {
	changed := 0
	for _, s := range o.sortedSlots() {
		if s.digestAny() {
			changed++
		}
	}
	return changed
}

func (o *Object) sortedSlots() []slot {
	out := make([]slot, 0, len(o.values))
	for _, s := range o.values {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key().ID() < out[j].key().ID() })
	return out
}

// changed runs after a value's cache was updated.
func (o *Object) changed(k Key, oldValue, newValue any) {
	o.PropertyChanged.Emit(Change{Object: o, Property: k, Old: oldValue, New: newValue})
	if k.Options().Has(Inherits) {
		for _, c := range o.children {
			c.inheritedChanged(k, oldValue)
		}
	}
}

// inheritedChanged re-digests k after the inherited source changed. old is
// the value o saw before the change.
func (o *Object) inheritedChanged(k Key, old any) {
	s, ok := o.values[k.ID()]
	if !ok {
		s = k.newSlot(o, old, true)
		o.store(s)
	}
	s.digestAny()
}

func (o *Object) slotFor(k Key) slot {
	s, ok := o.values[k.ID()]
	if !ok {
		s = k.newSlot(o, nil, false)
		o.store(s)
	}
	return s
}

func (o *Object) store(s slot) {
	if o.values == nil {
		o.values = make(map[int]slot)
	}
	o.values[s.key().ID()] = s
}

// ValueOf returns o's trackable value for p, creating it on first use.
func ValueOf[T any](o *Object, p *Property[T]) *Value[T] {
	return o.slotFor(p).(*Value[T])
}

// Get returns o's effective value for p without creating a value.
func Get[T any](o *Object, p *Property[T]) T {
	if s, ok := o.values[p.id]; ok {
		return s.(*Value[T]).cached
	}
	if p.Options().Has(Inherits) {
		if x, ok := inheritedValue(o.parent, p); ok {
			return x
		}
	}
	return p.DefaultValue()
}

// Set sets the local layer of o's value for p.
func Set[T any](o *Object, p *Property[T], x T) {
	ValueOf(o, p).SetLocal(x)
}

// Has reports whether o holds a trackable value for k.
func (o *Object) Has(k Key) bool {
	_, ok := o.values[k.ID()]
	return ok
}

// GetAny returns o's effective value for k.
func (o *Object) GetAny(k Key) any {
	if s, ok := o.values[k.ID()]; ok {
		return s.effective()
	}
	if k.Options().Has(Inherits) {
		for a := o.parent; a != nil; a = a.parent {
			if s, ok := a.values[k.ID()]; ok && s.valueSource() != SourceDefault {
				return s.effective()
			}
		}
	}
	return k.defaultAny()
}

// SourceOf returns the layer supplying o's cached value for k.
func (o *Object) SourceOf(k Key) ValueSource {
	if s, ok := o.values[k.ID()]; ok {
		return s.valueSource()
	}
	if k.Options().Has(Inherits) {
		for a := o.parent; a != nil; a = a.parent {
			if s, ok := a.values[k.ID()]; ok && s.valueSource() != SourceDefault {
				return SourceInherited
			}
		}
	}
	return SourceDefault
}

// SetStyledAny sets the styled layer of k from an untyped value. Strings
// are parsed with package convert.
func (o *Object) SetStyledAny(k Key, x any) error {
	return o.slotFor(k).setStyledAny(x)
}

// SetLocalAny sets the local layer of k from an untyped value.
func (o *Object) SetLocalAny(k Key, x any) error {
	return o.slotFor(k).setLocalAny(x)
}

// BindAny binds k to expr evaluated against sourceType. See Value.Bind.
func (o *Object) BindAny(k Key, expr string, sourceType reflect.Type, mode BindingMode) error {
	return o.slotFor(k).bindAny(expr, sourceType, mode)
}

// ClearStyled removes the styled layer from every value.
func (o *Object) ClearStyled() {
	for _, s := range o.values {
		if s.styledSet() {
			s.clearStyledAny()
		}
	}
}

// Release removes bindings and animated layers from every value. Used
// when the object leaves its tree.
func (o *Object) Release() {
	for _, s := range o.values {
		s.release()
	}
}

// VisitValues calls fn for every value o holds, in property ID order.
func (o *Object) VisitValues(fn func(k Key, value any, src ValueSource)) {
	for _, s := range o.sortedSlots() {
		fn(s.key(), s.effective(), s.valueSource())
	}
}
