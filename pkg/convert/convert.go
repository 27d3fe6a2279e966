// Package convert turns value text (from stylesheets and literal binding
// expressions) into typed Go values.
package convert

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ParseFunc converts text into a value of a specific type.
type ParseFunc func(text string) (any, error)

var (
	parsersMu sync.RWMutex
	parsers   = make(map[reflect.Type]ParseFunc)

	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	durationType        = reflect.TypeFor[time.Duration]()
)

// Register installs a parser for t, taking precedence over the built-in
// conversions. Intended for startup use.
func Register(t reflect.Type, fn ParseFunc) {
	parsersMu.Lock()
	defer parsersMu.Unlock()
	parsers[t] = fn
}

// RegisterFor is the typed form of Register.
func RegisterFor[T any](fn func(text string) (T, error)) {
	Register(reflect.TypeFor[T](), func(text string) (any, error) {
		return fn(text)
	})
}

func lookup(t reflect.Type) ParseFunc {
	parsersMu.RLock()
	defer parsersMu.RUnlock()
	return parsers[t]
}

// Parse converts text to T.
func Parse[T any](text string) (T, error) {
	var zero T
	v, err := ParseAs(text, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return v.Interface().(T), nil
}

// ParseAs converts text to a value of type t.
func ParseAs(text string, t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, fmt.Errorf("convert: nil target type")
	}
	if fn := lookup(t); fn != nil {
		v, err := fn(text)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.ValueOf(v)
		if !rv.IsValid() {
			return reflect.Zero(t), nil
		}
		if !rv.Type().AssignableTo(t) {
			return reflect.Value{}, fmt.Errorf("convert: parser for %s returned %s", t, rv.Type())
		}
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}

	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(text)); err != nil {
			return reflect.Value{}, fmt.Errorf("convert: %q as %s: %w", text, t, err)
		}
		return ptr.Elem(), nil
	}

	s := strings.TrimSpace(text)
	out := reflect.New(t).Elem()

	if t == durationType {
		d, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("convert: %q as duration: %w", text, err)
		}
		out.SetInt(int64(d))
		return out, nil
	}

	switch t.Kind() {
	case reflect.String:
		out.SetString(text)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("convert: %q as bool: %w", text, err)
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 0, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("convert: %q as %s: %w", text, t, err)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 0, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("convert: %q as %s: %w", text, t, err)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("convert: %q as %s: %w", text, t, err)
		}
		out.SetFloat(f)
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return reflect.Value{}, fmt.Errorf("convert: no conversion from text to %s", t)
		}
		out.Set(reflect.ValueOf(text))
	default:
		return reflect.Value{}, fmt.Errorf("convert: no conversion from text to %s", t)
	}
	return out, nil
}

// ParseFloat parses a float, accepting "auto" and "NaN" (case-insensitive)
// as NaN and an optional "px" suffix.
func ParseFloat(s string, bits int) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "auto") {
		s = "NaN"
	}
	s = strings.TrimSuffix(s, "px")
	return strconv.ParseFloat(s, bits)
}

// FromValue converts an arbitrary value to T: direct assertion first, then
// reflect conversion, then text parsing of strings.
func FromValue[T any](v any) (T, error) {
	var zero T
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	t := reflect.TypeFor[T]()
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return zero, nil
	}
	if s, ok := v.(string); ok {
		return Parse[T](s)
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t).Interface().(T), nil
	}
	return zero, fmt.Errorf("convert: cannot convert %s to %s", rv.Type(), t)
}
