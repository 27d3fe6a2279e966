package convert

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

type weekday int

type point struct{ X, Y int }

func (p *point) UnmarshalText(b []byte) error {
	_, err := fmt.Sscanf(string(b), "%d,%d", &p.X, &p.Y)
	return err
}

func TestParseBuiltins(t *testing.T) {
	if v, err := Parse[string]("  hi "); err != nil || v != "  hi " {
		t.Errorf("string: %q, %v", v, err)
	}
	if v, err := Parse[bool]("true"); err != nil || !v {
		t.Errorf("bool: %v, %v", v, err)
	}
	if v, err := Parse[int]("0x10"); err != nil || v != 16 {
		t.Errorf("int: %v, %v", v, err)
	}
	if v, err := Parse[uint8]("255"); err != nil || v != 255 {
		t.Errorf("uint8: %v, %v", v, err)
	}
	if _, err := Parse[uint8]("256"); err == nil {
		t.Error("uint8 overflow should fail")
	}
	if v, err := Parse[float64]("12.5px"); err != nil || v != 12.5 {
		t.Errorf("float px: %v, %v", v, err)
	}
	if v, err := Parse[float64]("Auto"); err != nil || !math.IsNaN(v) {
		t.Errorf("float auto: %v, %v", v, err)
	}
	if v, err := Parse[time.Duration]("250ms"); err != nil || v != 250*time.Millisecond {
		t.Errorf("duration: %v, %v", v, err)
	}
	if v, err := Parse[weekday]("3"); err != nil || v != 3 {
		t.Errorf("named int: %v, %v", v, err)
	}
	if v, err := Parse[any]("x"); err != nil || v != "x" {
		t.Errorf("any: %v, %v", v, err)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse[bool]("maybe"); err == nil {
		t.Error("expected bool error")
	}
	if _, err := Parse[[]int]("1,2"); err == nil || !strings.Contains(err.Error(), "no conversion") {
		t.Errorf("expected no-conversion error, got %v", err)
	}
	if _, err := Parse[fmt.Stringer]("x"); err == nil {
		t.Error("non-empty interface should not accept text")
	}
}

func TestParseTextUnmarshaler(t *testing.T) {
	p, err := Parse[point]("3,4")
	if err != nil {
		t.Fatal(err)
	}
	if p != (point{3, 4}) {
		t.Errorf("got %+v", p)
	}
}

func TestRegisteredParserWins(t *testing.T) {
	type mode string
	RegisterFor(func(text string) (mode, error) {
		return mode(strings.ToUpper(text)), nil
	})
	got, err := Parse[mode]("fill")
	if err != nil || got != "FILL" {
		t.Errorf("got %q, %v", got, err)
	}
}

func TestFromValue(t *testing.T) {
	if v, err := FromValue[float64](3); err != nil || v != 3 {
		t.Errorf("int->float: %v, %v", v, err)
	}
	if v, err := FromValue[int]("42"); err != nil || v != 42 {
		t.Errorf("string->int: %v, %v", v, err)
	}
	if v, err := FromValue[string](nil); err != nil || v != "" {
		t.Errorf("nil: %q, %v", v, err)
	}
	if _, err := FromValue[int](struct{}{}); err == nil {
		t.Error("expected error for struct->int")
	}
}
