package binding

import (
	"fmt"
	"reflect"
	"sync"
)

type accessorKind uint8

const (
	accessField accessorKind = iota
	accessMethod
	accessMapKey
)

// accessor reads one member from values of a single concrete type. It is
// built once per (type, member) and shared by every binding that crosses
// that member.
type accessor struct {
	kind  accessorKind
	name  string
	field []int // field index path on the dereferenced struct
	// method is looked up on the receiver type; viaPointer means the
	// method set needed the pointer type and the receiver must be
	// addressed (or copied) first.
	method     reflect.Method
	viaPointer bool
	mapKey     reflect.Value
	out        reflect.Type
}

type accessorKey struct {
	t    reflect.Type
	name string
}

type accessorResult struct {
	acc *accessor
	err error
}

var accessors sync.Map // accessorKey -> accessorResult

// lookupAccessor resolves name on t: exported field first, then a
// zero-argument single-result method, then a string-keyed map entry.
func lookupAccessor(t reflect.Type, name string) (*accessor, error) {
	key := accessorKey{t: t, name: name}
	if cached, ok := accessors.Load(key); ok {
		r := cached.(accessorResult)
		return r.acc, r.err
	}
	acc, err := buildAccessor(t, name)
	accessors.Store(key, accessorResult{acc: acc, err: err})
	return acc, err
}

func buildAccessor(t reflect.Type, name string) (*accessor, error) {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if base.Kind() == reflect.Struct {
		if f, ok := base.FieldByName(name); ok && f.IsExported() {
			return &accessor{kind: accessField, name: name, field: f.Index, out: f.Type}, nil
		}
	}

	if m, ok := t.MethodByName(name); ok {
		if err := checkGetter(m); err != nil {
			return nil, err
		}
		return &accessor{kind: accessMethod, name: name, method: m, out: m.Type.Out(0)}, nil
	}
	if t.Kind() != reflect.Pointer {
		if m, ok := reflect.PointerTo(t).MethodByName(name); ok {
			if err := checkGetter(m); err != nil {
				return nil, err
			}
			return &accessor{kind: accessMethod, name: name, method: m, viaPointer: true, out: m.Type.Out(0)}, nil
		}
	}

	if base.Kind() == reflect.Map && base.Key().Kind() == reflect.String {
		return &accessor{
			kind:   accessMapKey,
			name:   name,
			mapKey: reflect.ValueOf(name).Convert(base.Key()),
			out:    base.Elem(),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s has no member %q", ErrUnknownMember, t, name)
}

func checkGetter(m reflect.Method) error {
	// m.Type includes the receiver as the first input.
	if m.Type.NumIn() != 1 || m.Type.NumOut() != 1 {
		return fmt.Errorf("%w: method %s must take no arguments and return one value", ErrUnknownMember, m.Name)
	}
	return nil
}

// get reads the member from v. v must be a valid, non-interface value of
// the accessor's type. ok is false when a nil pointer or missing map entry
// is hit.
func (a *accessor) get(v reflect.Value) (reflect.Value, bool) {
	switch a.kind {
	case accessField:
		base, ok := deref(v)
		if !ok {
			return reflect.Value{}, false
		}
		f, err := base.FieldByIndexErr(a.field)
		if err != nil {
			return reflect.Value{}, false
		}
		return f, true

	case accessMethod:
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return reflect.Value{}, false
		}
		recv := v
		if a.viaPointer {
			if v.CanAddr() {
				recv = v.Addr()
			} else {
				p := reflect.New(v.Type())
				p.Elem().Set(v)
				recv = p
			}
		}
		return a.method.Func.Call([]reflect.Value{recv})[0], true

	case accessMapKey:
		base, ok := deref(v)
		if !ok || base.IsNil() {
			return reflect.Value{}, false
		}
		e := base.MapIndex(a.mapKey)
		if !e.IsValid() {
			return reflect.Value{}, false
		}
		return e, true
	}
	return reflect.Value{}, false
}

// set writes x to the member on v. Fields need an addressable container;
// map entries only need a non-nil map.
func (a *accessor) set(v reflect.Value, x reflect.Value) error {
	switch a.kind {
	case accessField:
		base, ok := deref(v)
		if !ok {
			return ErrNilIntermediate
		}
		f, err := base.FieldByIndexErr(a.field)
		if err != nil {
			return ErrNilIntermediate
		}
		if !f.CanSet() {
			return fmt.Errorf("%w: field %s is not addressable", ErrReadOnly, a.name)
		}
		f.Set(x)
		return nil
	case accessMapKey:
		base, ok := deref(v)
		if !ok || base.IsNil() {
			return ErrNilIntermediate
		}
		base.SetMapIndex(a.mapKey, x)
		return nil
	default:
		return fmt.Errorf("%w: %s is a method", ErrReadOnly, a.name)
	}
}

// unwrap strips interface layers. ok is false for a nil interface.
func unwrap(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

// deref follows pointers. ok is false when a nil pointer is hit.
func deref(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, true
}
