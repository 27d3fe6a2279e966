// Package binding compiles binding path expressions into typed getter and
// setter functions.
//
// A binding expression such as "Player.Inventory.Count" is resolved once
// against a source type and turned into a Binding[T]: Get reads the value
// from a source object, Set (when the path allows it) writes it back, and
// Equal compares two values of T. Every intermediate nil pointer, nil
// interface, nil map or missing map entry short-circuits Get to T's zero
// value with ErrNilIntermediate instead of panicking, so a binding survives
// a source that is temporarily incomplete.
//
// Compiled bindings are cached by (expression, source type, value type).
package binding

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/ultraviolet-go/upf/pkg/convert"
	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
)

var (
	// ErrSyntax reports a malformed expression.
	ErrSyntax = errors.New("binding: syntax error")
	// ErrNoSourceType reports a source binding compiled without a source type.
	ErrNoSourceType = errors.New("binding: no source type")
	// ErrUnknownMember reports a path segment that does not resolve.
	ErrUnknownMember = errors.New("binding: unknown member")
	// ErrNotConvertible reports a path whose final type cannot produce T.
	ErrNotConvertible = errors.New("binding: type not convertible")
	// ErrNilIntermediate reports a nil value in the middle of a path.
	ErrNilIntermediate = errors.New("binding: nil intermediate value")
	// ErrReadOnly reports a write through a path that cannot be written.
	ErrReadOnly = errors.New("binding: read-only path")
	// ErrSourceType reports a source object of the wrong type.
	ErrSourceType = errors.New("binding: source has wrong type")
)

// Binding is a compiled binding expression.
type Binding[T any] struct {
	// Expression is the parsed expression.
	Expression Expression
	// SourceType is the type the expression was compiled against. Nil for
	// no-source expressions.
	SourceType reflect.Type

	// Get reads the value from source. On any failure it returns T's zero
	// value and a non-nil error; it never panics.
	Get func(source any) (T, error)
	// Set writes v through the path. Nil when the path is read-only.
	Set func(source any, v T) error
	// Equal compares two values of T.
	Equal func(a, b T) bool
}

// ReadOnly reports whether the binding has no setter.
func (b *Binding[T]) ReadOnly() bool {
	return b.Set == nil
}

// Value returns Get's result, discarding the error.
func (b *Binding[T]) Value(source any) T {
	v, _ := b.Get(source)
	return v
}

type cacheKey struct {
	expr   string
	source reflect.Type
	value  reflect.Type
}

// Cache memoizes compiled bindings. The zero value is not usable; use
// NewCache. Safe for concurrent use.
type Cache struct {
	mu sync.Mutex
	m  map[cacheKey]any
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{m: make(map[cacheKey]any)}
}

// Len returns the number of cached bindings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// DefaultCache is used by Compile.
var DefaultCache = NewCache()

// Compile compiles expr against sourceType using DefaultCache.
func Compile[T any](expr string, sourceType reflect.Type) (*Binding[T], error) {
	return CompileIn[T](DefaultCache, expr, sourceType)
}

// CompileIn compiles expr against sourceType, reusing a cached result for
// the same (expression, source type, T). Failures are returned as
// *errors.UVError with KindBinding and are not cached.
func CompileIn[T any](c *Cache, expr string, sourceType reflect.Type) (*Binding[T], error) {
	key := cacheKey{expr: expr, source: sourceType, value: reflect.TypeFor[T]()}
	c.mu.Lock()
	if cached, ok := c.m[key]; ok {
		c.mu.Unlock()
		return cached.(*Binding[T]), nil
	}
	c.mu.Unlock()

	b, err := compile[T](expr, sourceType)
	if err != nil {
		return nil, &uverrors.UVError{Op: "binding.Compile", Kind: uverrors.KindBinding, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.m[key]; ok {
		return cached.(*Binding[T]), nil
	}
	c.m[key] = b
	return b, nil
}

func compile[T any](raw string, sourceType reflect.Type) (*Binding[T], error) {
	expr, err := ParseExpression(raw)
	if err != nil {
		return nil, err
	}
	valueType := reflect.TypeFor[T]()

	if expr.NoSource {
		v, err := convert.Parse[T](expr.Literal)
		if err != nil {
			return nil, fmt.Errorf("%w: literal %q: %v", ErrNotConvertible, expr.Literal, err)
		}
		return &Binding[T]{
			Expression: expr,
			Get:        func(any) (T, error) { return v, nil },
			Equal:      Comparer[T](),
		}, nil
	}

	if sourceType == nil {
		return nil, fmt.Errorf("%w for %q", ErrNoSourceType, raw)
	}

	plan, err := analyze(sourceType, expr.Path, valueType)
	if err != nil {
		return nil, err
	}

	b := &Binding[T]{
		Expression: expr,
		SourceType: sourceType,
		Equal:      Comparer[T](),
	}
	b.Get = func(source any) (v T, err error) {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				v, err = zero, fmt.Errorf("binding: panic reading %q: %v", raw, r)
			}
		}()
		rv, err := walk(source, sourceType, expr.Path)
		if err != nil {
			var zero T
			return zero, err
		}
		return toValue[T](rv, valueType)
	}
	if plan.settable {
		b.Set = func(source any, v T) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("binding: panic writing %q: %v", raw, r)
				}
			}()
			return assign(source, sourceType, expr.Path, reflect.ValueOf(&v).Elem())
		}
	}
	return b, nil
}

// plan is the result of static analysis of a path.
type plan struct {
	settable bool
}

// analyze checks every segment against the static types it can see. Once
// an interface-typed member is reached the rest of the path is resolved
// against dynamic types at evaluation time.
func analyze(sourceType reflect.Type, path []string, valueType reflect.Type) (plan, error) {
	t := sourceType
	addressable := t.Kind() == reflect.Pointer
	var last *accessor
	for i, name := range path {
		if t.Kind() == reflect.Interface {
			// Dynamic remainder: a setter is offered and checked on use.
			return plan{settable: true}, nil
		}
		acc, err := lookupAccessor(t, name)
		if err != nil {
			return plan{}, err
		}
		if i < len(path)-1 {
			switch acc.kind {
			case accessField:
				addressable = addressable || acc.out.Kind() == reflect.Pointer
			default:
				addressable = acc.out.Kind() == reflect.Pointer
			}
		}
		last = acc
		t = acc.out
	}

	if t.Kind() != reflect.Interface && !t.AssignableTo(valueType) && !t.ConvertibleTo(valueType) {
		return plan{}, fmt.Errorf("%w: %s to %s", ErrNotConvertible, t, valueType)
	}

	// Interface-typed values are checked against the member type on write.
	writable := valueType.Kind() == reflect.Interface ||
		valueType.AssignableTo(t) || valueType.ConvertibleTo(t)
	p := plan{}
	switch last.kind {
	case accessField:
		p.settable = addressable && writable
	case accessMapKey:
		p.settable = writable
	}
	return p, nil
}

func checkSource(source any, sourceType reflect.Type) (reflect.Value, error) {
	if source == nil {
		return reflect.Value{}, ErrNilIntermediate
	}
	rv := reflect.ValueOf(source)
	if rv.Type() != sourceType {
		if sourceType.Kind() == reflect.Interface && rv.Type().Implements(sourceType) {
			return rv, nil
		}
		return reflect.Value{}, fmt.Errorf("%w: got %s, want %s", ErrSourceType, rv.Type(), sourceType)
	}
	return rv, nil
}

// walk reads every segment of path from source.
func walk(source any, sourceType reflect.Type, path []string) (reflect.Value, error) {
	v, err := checkSource(source, sourceType)
	if err != nil {
		return reflect.Value{}, err
	}
	return walkFrom(v, path)
}

func walkFrom(v reflect.Value, path []string) (reflect.Value, error) {
	for _, name := range path {
		var ok bool
		if v, ok = unwrap(v); !ok {
			return reflect.Value{}, ErrNilIntermediate
		}
		acc, err := lookupAccessor(v.Type(), name)
		if err != nil {
			return reflect.Value{}, err
		}
		if v, ok = acc.get(v); !ok {
			return reflect.Value{}, ErrNilIntermediate
		}
	}
	return v, nil
}

// assign walks to the container of the last segment and writes x there.
func assign(source any, sourceType reflect.Type, path []string, x reflect.Value) error {
	v, err := checkSource(source, sourceType)
	if err != nil {
		return err
	}
	container, err := walkFrom(v, path[:len(path)-1])
	if err != nil {
		return err
	}
	container, ok := unwrap(container)
	if !ok {
		return ErrNilIntermediate
	}
	acc, err := lookupAccessor(container.Type(), path[len(path)-1])
	if err != nil {
		return err
	}
	if x.Kind() == reflect.Interface && acc.out.Kind() != reflect.Interface {
		if x.IsNil() {
			x = reflect.Zero(acc.out)
		} else {
			x = x.Elem()
		}
	}
	if acc.out != x.Type() {
		switch {
		case x.Type().AssignableTo(acc.out):
		case x.Type().ConvertibleTo(acc.out):
			x = x.Convert(acc.out)
		default:
			return fmt.Errorf("%w: %s to %s", ErrNotConvertible, x.Type(), acc.out)
		}
	}
	return acc.set(container, x)
}

// toValue converts the final reflect value to T.
func toValue[T any](rv reflect.Value, valueType reflect.Type) (T, error) {
	var zero T
	if rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return zero, nil
		}
		if valueType.Kind() != reflect.Interface {
			rv = rv.Elem()
		}
	}
	switch {
	case rv.Type().AssignableTo(valueType):
	case rv.Type().ConvertibleTo(valueType):
		rv = rv.Convert(valueType)
	default:
		return zero, fmt.Errorf("%w: %s to %s", ErrNotConvertible, rv.Type(), valueType)
	}
	out, _ := rv.Interface().(T)
	return out, nil
}

// Comparer returns an equality function for T: == for comparable
// non-interface types (with NaN equal to NaN for floats) and
// reflect.DeepEqual otherwise.
func Comparer[T any]() func(a, b T) bool {
	t := reflect.TypeFor[T]()
	switch {
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		return func(a, b T) bool {
			fa, fb := reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float()
			return fa == fb || (fa != fa && fb != fb)
		}
	case t.Kind() != reflect.Interface && t.Comparable():
		return func(a, b T) bool { return any(a) == any(b) }
	default:
		return func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
}
