package host

import (
	"testing"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/ultraviolet-go/upf/pkg/input"
	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		in   ebiten.Key
		want input.Key
	}{
		{ebiten.KeyTab, input.KeyTab},
		{ebiten.KeyNumpadEnter, input.KeyEnter},
		{ebiten.KeyShiftRight, input.KeyShift},
		{ebiten.KeyF1, input.KeyF1},
		{ebiten.KeyF12, input.KeyF12},
		{ebiten.KeyDigit7, input.Key7},
		{ebiten.KeyQ, input.KeyQ},
		{ebiten.KeyCapsLock, input.KeyUnknown},
	}
	for _, tt := range tests {
		if got := TranslateKey(tt.in); got != tt.want {
			t.Errorf("TranslateKey(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsRepeat(t *testing.T) {
	for ticks, want := range map[int]bool{1: false, 30: false, 31: false, 33: true, 34: false, 36: true} {
		if got := isRepeat(ticks); got != want {
			t.Errorf("isRepeat(%d) = %v", ticks, got)
		}
	}
}

type scriptedInput struct {
	frames []InputFrame
}

func (s *scriptedInput) Poll() InputFrame {
	if len(s.frames) == 0 {
		return InputFrame{}
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f
}

func newGame(t *testing.T, frames ...InputFrame) (*Game, *ui.Border, *ui.Border) {
	t.Helper()
	canvas := ui.NewCanvas()
	a, b := ui.NewBorder(nil), ui.NewBorder(nil)
	for i, el := range []*ui.Border{a, b} {
		ui.Set(el, ui.WidthProperty, 50.0)
		ui.Set(el, ui.HeightProperty, 50.0)
		ui.Set(el, ui.FocusableProperty, true)
		ui.SetPosition(el, 10+90*float64(i), 10)
		if err := canvas.AddChild(el); err != nil {
			t.Fatal(err)
		}
	}
	p := ui.NewPresenter(layout.Size{Width: 200, Height: 100})
	if err := p.SetRoot(canvas); err != nil {
		t.Fatal(err)
	}
	g := New(p, Options{Input: &scriptedInput{frames: frames}, TPS: 50})
	t.Cleanup(g.Close)
	return g, a, b
}

func TestGameUpdateDeliversInput(t *testing.T) {
	var typed string
	g, a, b := newGame(t,
		InputFrame{Pressed: []input.Key{input.KeyTab}},
		InputFrame{Released: []input.Key{input.KeyTab}, Chars: []rune("hi")},
		InputFrame{Cursor: layout.Point{X: 120, Y: 30}, ButtonsDown: []input.MouseButton{input.MouseLeft}},
		InputFrame{Cursor: layout.Point{X: 120, Y: 30}, ButtonsUp: []input.MouseButton{input.MouseLeft}},
	)
	g.Router().On(a).Text.Add(func(e *input.TextEvent) { typed += e.Text })

	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if got := g.Router().Focused(); got != a.El() {
		t.Fatalf("focused after Tab = %v", got)
	}
	_ = g.Update()
	if typed != "hi" {
		t.Errorf("typed = %q", typed)
	}
	_ = g.Update()
	if got := g.Router().Focused(); got != b.El() {
		t.Errorf("focused after click = %v", got)
	}
	if !b.PseudoClass(input.PseudoHover) {
		t.Error("b should be hovered")
	}
	_ = g.Update()
	if got := g.Presenter().LastFrame().Delta; got != 20*time.Millisecond {
		t.Errorf("tick = %v, want 20ms", got)
	}
}

func TestGameLayoutResizes(t *testing.T) {
	g, _, _ := newGame(t)
	if w, h := g.Layout(640, 480); w != 640 || h != 480 {
		t.Fatalf("layout = %dx%d", w, h)
	}
	if got := g.Presenter().Viewport(); got != (layout.Size{Width: 640, Height: 480}) {
		t.Errorf("viewport = %v", got)
	}
}

func TestGameQuit(t *testing.T) {
	g, _, _ := newGame(t)
	g.Quit()
	if err := g.Update(); err != ebiten.Termination {
		t.Errorf("Update after Quit = %v", err)
	}
}
