package dependency

import (
	"reflect"
	"strings"

	"github.com/ultraviolet-go/upf/pkg/binding"
	"github.com/ultraviolet-go/upf/pkg/convert"
)

// Options are flags describing how a property participates in the
// pipeline.
type Options uint32

const (
	// AffectsMeasure schedules the owner for measure when the value changes.
	AffectsMeasure Options = 1 << iota
	// AffectsArrange schedules the owner for arrange when the value changes.
	AffectsArrange
	// AffectsPosition schedules the owner for position when the value changes.
	AffectsPosition
	// AffectsStyle schedules the owner for style when the value changes.
	AffectsStyle
	// Inherits makes descendants without a higher-precedence value use the
	// nearest ancestor's value.
	Inherits
	// BindsTwoWayByDefault makes BindDefault behave as BindTwoWay.
	BindsTwoWayByDefault
)

// Has reports whether all flags in f are set.
func (o Options) Has(f Options) bool {
	return o&f == f
}

func (o Options) String() string {
	names := []struct {
		f    Options
		name string
	}{
		{AffectsMeasure, "AffectsMeasure"},
		{AffectsArrange, "AffectsArrange"},
		{AffectsPosition, "AffectsPosition"},
		{AffectsStyle, "AffectsStyle"},
		{Inherits, "Inherits"},
		{BindsTwoWayByDefault, "BindsTwoWayByDefault"},
	}
	var parts []string
	for _, n := range names {
		if o.Has(n.f) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// Metadata describes a property at registration.
type Metadata[T any] struct {
	// Default creates the default value. Nil means T's zero value.
	Default func() T
	// Changed is called after the effective value changed during a digest.
	Changed func(obj *Object, oldValue, newValue T)
	// Equal compares values. Nil means binding.Comparer[T]().
	Equal func(a, b T) bool
	// Options are the property's flags.
	Options Options
}

// Key is the type-erased view of a registered property. It is implemented
// only by *Property[T].
type Key interface {
	// ID is unique across all registries in the process.
	ID() int
	Name() string
	Owner() *Type
	Options() Options
	ValueType() reflect.Type
	String() string

	defaultAny() any
	newSlot(obj *Object, initial any, seeded bool) slot
}

// Property is a registered dependency property with value type T.
type Property[T any] struct {
	id        int
	name      string
	owner     *Type
	metadata  Metadata[T]
	equal     func(a, b T) bool
	valueType reflect.Type
}

func (p *Property[T]) ID() int                 { return p.id }
func (p *Property[T]) Name() string            { return p.name }
func (p *Property[T]) Owner() *Type            { return p.owner }
func (p *Property[T]) Options() Options        { return p.metadata.Options }
func (p *Property[T]) ValueType() reflect.Type { return p.valueType }

// String returns "Owner.Name".
func (p *Property[T]) String() string {
	return p.owner.Name() + "." + p.name
}

// DefaultValue returns a fresh default value.
func (p *Property[T]) DefaultValue() T {
	if p.metadata.Default != nil {
		return p.metadata.Default()
	}
	var zero T
	return zero
}

// Equal compares two values with the property's comparer.
func (p *Property[T]) Equal(a, b T) bool {
	return p.equal(a, b)
}

// Parse converts value text to T.
func (p *Property[T]) Parse(text string) (T, error) {
	return convert.Parse[T](text)
}

func (p *Property[T]) defaultAny() any {
	return p.DefaultValue()
}

// newSlot creates the value for obj. With seeded set the cache starts at
// initial so the first digest reports a change against it.
func (p *Property[T]) newSlot(obj *Object, initial any, seeded bool) slot {
	v := &Value[T]{obj: obj, prop: p, def: p.DefaultValue()}
	if typed, ok := initial.(T); seeded && (ok || initial == nil) {
		v.cached, v.source = typed, SourceInherited
	} else {
		v.cached, v.source = v.compute()
	}
	return v
}

func newProperty[T any](id int, owner *Type, name string, md Metadata[T]) *Property[T] {
	p := &Property[T]{
		id:        id,
		name:      name,
		owner:     owner,
		metadata:  md,
		equal:     md.Equal,
		valueType: reflect.TypeFor[T](),
	}
	if p.equal == nil {
		p.equal = binding.Comparer[T]()
	}
	return p
}
