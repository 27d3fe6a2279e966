package host

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/ultraviolet-go/upf/pkg/input"
	"github.com/ultraviolet-go/upf/pkg/layout"
)

// Key repeat timing in ticks, matching a typical desktop at 60 TPS.
const (
	repeatDelay    = 30
	repeatInterval = 3
)

// InputFrame is the input observed during one tick.
type InputFrame struct {
	Pressed  []input.Key
	Repeated []input.Key
	Released []input.Key
	Chars    []rune

	Cursor      layout.Point
	ButtonsDown []input.MouseButton
	ButtonsUp   []input.MouseButton
	WheelX      float64
	WheelY      float64
}

// InputSource produces one InputFrame per tick.
type InputSource interface {
	Poll() InputFrame
}

// ebitenInput polls ebiten's global input state.
type ebitenInput struct {
	keys  []ebiten.Key
	chars []rune
}

func (e *ebitenInput) Poll() InputFrame {
	var f InputFrame

	e.keys = inpututil.AppendJustPressedKeys(e.keys[:0])
	for _, k := range e.keys {
		if key := TranslateKey(k); key != input.KeyUnknown {
			f.Pressed = append(f.Pressed, key)
		}
	}
	e.keys = inpututil.AppendPressedKeys(e.keys[:0])
	for _, k := range e.keys {
		if isRepeat(inpututil.KeyPressDuration(k)) {
			if key := TranslateKey(k); key != input.KeyUnknown {
				f.Repeated = append(f.Repeated, key)
			}
		}
	}
	e.keys = inpututil.AppendJustReleasedKeys(e.keys[:0])
	for _, k := range e.keys {
		if key := TranslateKey(k); key != input.KeyUnknown {
			f.Released = append(f.Released, key)
		}
	}
	e.chars = ebiten.AppendInputChars(e.chars[:0])
	f.Chars = e.chars

	mx, my := ebiten.CursorPosition()
	f.Cursor = layout.Point{X: float64(mx), Y: float64(my)}
	for _, b := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(b.from) {
			f.ButtonsDown = append(f.ButtonsDown, b.to)
		}
		if inpututil.IsMouseButtonJustReleased(b.from) {
			f.ButtonsUp = append(f.ButtonsUp, b.to)
		}
	}
	f.WheelX, f.WheelY = ebiten.Wheel()
	return f
}

func isRepeat(ticks int) bool {
	return ticks > repeatDelay && (ticks-repeatDelay)%repeatInterval == 0
}

// Deliver feeds f to r in the order a user produced it: releases, new
// presses, repeats, text, then pointer movement and buttons.
func Deliver(r *input.Router, f InputFrame) {
	for _, k := range f.Released {
		r.KeyUp(k)
	}
	for _, k := range f.Pressed {
		r.KeyDown(k, false)
	}
	for _, k := range f.Repeated {
		r.KeyDown(k, true)
	}
	if len(f.Chars) > 0 {
		r.Text(string(f.Chars))
	}

	if f.Cursor != r.MousePosition() {
		r.MouseMove(f.Cursor)
	}
	for _, b := range f.ButtonsDown {
		r.MouseDown(f.Cursor, b)
	}
	for _, b := range f.ButtonsUp {
		r.MouseUp(f.Cursor, b)
	}
	if f.WheelX != 0 || f.WheelY != 0 {
		r.MouseWheel(f.WheelX, f.WheelY)
	}
}
