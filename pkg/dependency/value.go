package dependency

import (
	stderrors "errors"
	"fmt"
	"reflect"

	"github.com/ultraviolet-go/upf/pkg/binding"
	"github.com/ultraviolet-go/upf/pkg/convert"
	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
)

// ValueSource identifies the layer that supplied an effective value.
type ValueSource uint8

const (
	SourceDefault ValueSource = iota
	SourceInherited
	SourceStyled
	SourceLocal
	// SourceBinding is a binding occupying the local layer.
	SourceBinding
	SourceAnimated
)

func (s ValueSource) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceInherited:
		return "inherited"
	case SourceStyled:
		return "styled"
	case SourceLocal:
		return "local"
	case SourceBinding:
		return "binding"
	case SourceAnimated:
		return "animated"
	default:
		return "unknown"
	}
}

// BindingMode controls the direction of a binding.
type BindingMode uint8

const (
	// BindDefault is BindTwoWay for properties with BindsTwoWayByDefault
	// and writable paths, BindOneWay otherwise.
	BindDefault BindingMode = iota
	// BindOneWay reads from the source.
	BindOneWay
	// BindTwoWay reads from the source and writes local sets back to it.
	BindTwoWay
	// BindOneWayToSource writes local sets to the source and never reads.
	BindOneWayToSource
)

func (m BindingMode) String() string {
	switch m {
	case BindOneWay:
		return "OneWay"
	case BindTwoWay:
		return "TwoWay"
	case BindOneWayToSource:
		return "OneWayToSource"
	default:
		return "Default"
	}
}

func (m BindingMode) reads() bool  { return m == BindOneWay || m == BindTwoWay }
func (m BindingMode) writes() bool { return m == BindTwoWay || m == BindOneWayToSource }

// Value is the trackable value of one property on one object. Layers are
// set independently; the effective value is recomputed only by Digest,
// in precedence order animated > local (or binding) > styled >
// inherited > default.
type Value[T any] struct {
	obj  *Object
	prop *Property[T]
	def  T

	cached T
	source ValueSource

	local, styled, animated          T
	hasLocal, hasStyled, hasAnimated bool

	bind        *binding.Binding[T]
	bindMode    BindingMode
	bindFailing bool
}

// Property returns the property this value belongs to.
func (v *Value[T]) Property() *Property[T] { return v.prop }

// Object returns the owning object.
func (v *Value[T]) Object() *Object { return v.obj }

// Get returns the cached effective value as of the last digest.
func (v *Value[T]) Get() T { return v.cached }

// Source returns the layer that supplied the cached value.
func (v *Value[T]) Source() ValueSource { return v.source }

// Local returns the local layer.
func (v *Value[T]) Local() (T, bool) { return v.local, v.hasLocal }

// SetLocal sets the local layer. On a two-way or to-source binding the
// value is written through to the data source; on a one-way binding the
// binding is removed first.
func (v *Value[T]) SetLocal(x T) {
	if v.bind != nil {
		if v.bindMode.writes() {
			v.writeSource(x)
			if v.bindMode == BindOneWayToSource {
				v.local, v.hasLocal = x, true
			}
			v.obj.markPending(v)
			return
		}
		v.bind = nil
		v.bindFailing = false
	}
	v.local, v.hasLocal = x, true
	v.obj.markPending(v)
}

// ClearLocal removes the local layer. A binding is not affected.
func (v *Value[T]) ClearLocal() {
	if !v.hasLocal {
		return
	}
	var zero T
	v.local, v.hasLocal = zero, false
	v.obj.markPending(v)
}

// SetStyled sets the styled layer.
func (v *Value[T]) SetStyled(x T) {
	v.styled, v.hasStyled = x, true
	v.obj.markPending(v)
}

// ClearStyled removes the styled layer.
func (v *Value[T]) ClearStyled() {
	if !v.hasStyled {
		return
	}
	var zero T
	v.styled, v.hasStyled = zero, false
	v.obj.markPending(v)
}

// SetAnimated sets the animated layer.
func (v *Value[T]) SetAnimated(x T) {
	v.animated, v.hasAnimated = x, true
	v.obj.markPending(v)
}

// ClearAnimated removes the animated layer.
func (v *Value[T]) ClearAnimated() {
	if !v.hasAnimated {
		return
	}
	var zero T
	v.animated, v.hasAnimated = zero, false
	v.obj.markPending(v)
}

// Animated returns the animated layer.
func (v *Value[T]) Animated() (T, bool) { return v.animated, v.hasAnimated }

// Bind compiles expr against sourceType and installs the binding on the
// local layer. Compile failures and a two-way request on a read-only path
// are returned as *errors.UVError with KindBinding.
func (v *Value[T]) Bind(expr string, sourceType reflect.Type, mode BindingMode) error {
	b, err := binding.Compile[T](expr, sourceType)
	if err != nil {
		var uv *uverrors.UVError
		if stderrors.As(err, &uv) {
			uv.Property = v.prop.String()
		}
		return err
	}
	return v.BindCompiled(b, mode)
}

// BindCompiled installs an already compiled binding.
func (v *Value[T]) BindCompiled(b *binding.Binding[T], mode BindingMode) error {
	if mode == BindDefault {
		mode = BindOneWay
		if v.prop.Options().Has(BindsTwoWayByDefault) && !b.ReadOnly() {
			mode = BindTwoWay
		}
	}
	if mode.writes() && b.ReadOnly() {
		return &uverrors.UVError{
			Op:       "dependency.Bind",
			Kind:     uverrors.KindBinding,
			Property: v.prop.String(),
			Err:      fmt.Errorf("%w: %s binding on %q", binding.ErrReadOnly, mode, b.Expression.Raw),
		}
	}
	v.bind, v.bindMode, v.bindFailing = b, mode, false
	v.obj.markPending(v)
	return nil
}

// Unbind removes the binding, if any.
func (v *Value[T]) Unbind() {
	if v.bind == nil {
		return
	}
	v.bind, v.bindFailing = nil, false
	v.obj.markPending(v)
}

// Binding returns the installed binding and its mode.
func (v *Value[T]) Binding() (*binding.Binding[T], BindingMode) {
	return v.bind, v.bindMode
}

// Invalidate schedules a digest without changing any layer, for example
// after the bound data source was mutated.
func (v *Value[T]) Invalidate() {
	v.obj.markPending(v)
}

// Digest recomputes the effective value. It returns true, updates the
// cache and fires change notifications only when the value differs from
// the cached one.
func (v *Value[T]) Digest() bool {
	v.obj.clearPending(v.prop.id)
	next, src := v.compute()
	v.source = src
	if v.prop.equal(v.cached, next) {
		return false
	}
	old := v.cached
	v.cached = next
	if v.prop.metadata.Changed != nil {
		v.prop.metadata.Changed(v.obj, old, next)
	}
	v.obj.changed(v.prop, old, next)
	return true
}

func (v *Value[T]) compute() (T, ValueSource) {
	if v.hasAnimated {
		return v.animated, SourceAnimated
	}
	if v.bind != nil && v.bindMode.reads() {
		x, err := v.readSource()
		if err != nil {
			return v.def, SourceDefault
		}
		return x, SourceBinding
	}
	if v.hasLocal {
		return v.local, SourceLocal
	}
	if v.hasStyled {
		return v.styled, SourceStyled
	}
	if v.prop.Options().Has(Inherits) {
		if x, ok := inheritedValue(v.obj.parent, v.prop); ok {
			return x, SourceInherited
		}
	}
	return v.def, SourceDefault
}

// readSource evaluates the binding. Failures are reported once per
// transition into the failing state.
func (v *Value[T]) readSource() (T, error) {
	x, err := v.bind.Get(v.obj.DataSource())
	if err != nil {
		if !v.bindFailing {
			v.bindFailing = true
			uverrors.ReportBindingError(&uverrors.BindingError{
				Expression: v.bind.Expression.Raw,
				Property:   v.prop.String(),
				Err:        err,
			})
		}
		return x, err
	}
	v.bindFailing = false
	return x, nil
}

func (v *Value[T]) writeSource(x T) {
	if err := v.bind.Set(v.obj.DataSource(), x); err != nil {
		uverrors.ReportBindingError(&uverrors.BindingError{
			Expression: v.bind.Expression.Raw,
			Property:   v.prop.String(),
			Err:        err,
		})
	}
}

// slot implementation

func (v *Value[T]) key() Key                 { return v.prop }
func (v *Value[T]) effective() any           { return v.cached }
func (v *Value[T]) valueSource() ValueSource { return v.source }
func (v *Value[T]) bound() bool              { return v.bind != nil }
func (v *Value[T]) styledSet() bool          { return v.hasStyled }

func (v *Value[T]) digestAny() bool { return v.Digest() }

func (v *Value[T]) setStyledAny(x any) error {
	typed, err := convert.FromValue[T](x)
	if err != nil {
		return err
	}
	v.SetStyled(typed)
	return nil
}

func (v *Value[T]) setLocalAny(x any) error {
	typed, err := convert.FromValue[T](x)
	if err != nil {
		return err
	}
	v.SetLocal(typed)
	return nil
}

func (v *Value[T]) bindAny(expr string, sourceType reflect.Type, mode BindingMode) error {
	return v.Bind(expr, sourceType, mode)
}

func (v *Value[T]) clearStyledAny() { v.ClearStyled() }

func (v *Value[T]) release() {
	v.Unbind()
	v.ClearAnimated()
}

// inheritedValue returns the nearest ancestor value for p that is not a
// plain default.
func inheritedValue[T any](o *Object, p *Property[T]) (T, bool) {
	for ; o != nil; o = o.parent {
		if s, ok := o.values[p.id]; ok {
			tv := s.(*Value[T])
			if tv.source != SourceDefault {
				return tv.cached, true
			}
		}
	}
	var zero T
	return zero, false
}
