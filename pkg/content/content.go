// Package content supplies typed resources by identifier.
//
// Callers go through a Loader. Load is tolerant: a missing or malformed
// resource yields the zero value and a KindContent diagnostic instead of
// an error, so a bad asset degrades one element rather than the frame.
//
//	loader := content.NewCache(content.DirLoader{FS: os.DirFS("assets")})
//	doc := content.Load[content.Document](loader, "layouts/main")
package content

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/ultraviolet-go/upf/pkg/convert"
	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
)

// ErrNotFound reports an identifier the loader does not know.
var ErrNotFound = errors.New("content: not found")

// Loader decodes the resource id into dst, a non-nil pointer.
type Loader interface {
	Load(id string, dst any) error
}

// TryLoad loads id as a T and returns any failure.
func TryLoad[T any](l Loader, id string) (T, error) {
	var v T
	if l == nil {
		return v, fmt.Errorf("content: %q: nil loader", id)
	}
	if err := l.Load(id, &v); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Load loads id as a T. Failures are reported with KindContent and yield
// the zero value.
func Load[T any](l Loader, id string) T {
	v, err := TryLoad[T](l, id)
	if err != nil {
		uverrors.Report(&uverrors.UVError{
			Op:   "content.Load",
			Kind: uverrors.KindContent,
			Err:  fmt.Errorf("%q: %w", id, err),
		})
	}
	return v
}

// MapLoader serves in-memory values. A value assignable to the target is
// copied; a string is parsed into the target type with package convert.
type MapLoader map[string]any

// Load implements Loader.
func (m MapLoader) Load(id string, dst any) error {
	v, ok := m[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	target, err := targetOf(dst)
	if err != nil {
		return err
	}
	src := reflect.ValueOf(v)
	switch {
	case !src.IsValid():
		target.SetZero()
	case src.Type().AssignableTo(target.Type()):
		target.Set(src)
	case src.Kind() == reflect.String:
		parsed, err := convert.ParseAs(src.String(), target.Type())
		if err != nil {
			return fmt.Errorf("content: %q: %w", id, err)
		}
		target.Set(parsed)
	default:
		return fmt.Errorf("content: %q: cannot load %s as %s", id, src.Type(), target.Type())
	}
	return nil
}

func targetOf(dst any) (reflect.Value, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, fmt.Errorf("content: destination must be a non-nil pointer, got %T", dst)
	}
	return rv.Elem(), nil
}

type cacheKey struct {
	id  string
	typ reflect.Type
}

// Cache memoizes a Loader per identifier and target type. Failures are
// not cached. A Cache is safe for concurrent use.
type Cache struct {
	loader Loader

	mu    sync.Mutex
	items map[cacheKey]reflect.Value
}

// NewCache wraps l.
func NewCache(l Loader) *Cache {
	return &Cache{loader: l, items: make(map[cacheKey]reflect.Value)}
}

// Load implements Loader.
func (c *Cache) Load(id string, dst any) error {
	target, err := targetOf(dst)
	if err != nil {
		return err
	}
	key := cacheKey{id: id, typ: target.Type()}

	c.mu.Lock()
	cached, ok := c.items[key]
	c.mu.Unlock()
	if ok {
		target.Set(cached)
		return nil
	}

	if err := c.loader.Load(id, dst); err != nil {
		return err
	}
	kept := reflect.New(target.Type()).Elem()
	kept.Set(target)
	c.mu.Lock()
	c.items[key] = kept
	c.mu.Unlock()
	return nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
}
