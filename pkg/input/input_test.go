package input

import (
	"testing"

	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

type scene struct {
	p      *ui.Presenter
	r      *Router
	canvas *ui.Canvas
	a, b   *ui.Border
}

// newScene lays out two focusable 50x50 borders side by side on a canvas:
// a at (10,10) and b at (100,10).
func newScene(t *testing.T) *scene {
	t.Helper()
	s := &scene{canvas: ui.NewCanvas(), a: ui.NewBorder(nil), b: ui.NewBorder(nil)}
	for i, el := range []*ui.Border{s.a, s.b} {
		el.SetName(string(rune('a' + i)))
		ui.Set(el, ui.WidthProperty, 50.0)
		ui.Set(el, ui.HeightProperty, 50.0)
		ui.Set(el, ui.FocusableProperty, true)
		ui.SetPosition(el, 10+90*float64(i), 10)
		if err := s.canvas.AddChild(el); err != nil {
			t.Fatal(err)
		}
	}
	s.p = ui.NewPresenter(layout.Size{Width: 200, Height: 100})
	if err := s.p.SetRoot(s.canvas); err != nil {
		t.Fatal(err)
	}
	s.p.Update(0)
	s.r = NewRouter(s.p)
	t.Cleanup(s.r.Close)
	return s
}

func TestTabCyclesFocus(t *testing.T) {
	s := newScene(t)
	var changes []FocusEvent
	s.r.FocusChanged.Add(func(e FocusEvent) { changes = append(changes, e) })

	steps := []struct {
		shift bool
		want  *ui.Border
	}{
		{false, s.a},
		{false, s.b},
		{false, s.a},
		{true, s.b},
		{true, s.a},
	}
	for i, st := range steps {
		if st.shift {
			s.r.KeyDown(KeyShift, false)
		}
		if !s.r.KeyDown(KeyTab, false) {
			t.Fatalf("step %d: Tab not consumed", i)
		}
		if st.shift {
			s.r.KeyUp(KeyShift)
		}
		if s.r.Focused() != st.want.El() {
			t.Fatalf("step %d: focused %v, want %v", i, s.r.Focused(), st.want.El())
		}
	}
	if !s.a.PseudoClass(PseudoFocus) || s.b.PseudoClass(PseudoFocus) {
		t.Error("focus pseudo-class out of date")
	}
	if len(changes) != len(steps) || changes[0].Old != nil {
		t.Errorf("changes = %d, first old = %v", len(changes), changes[0].Old)
	}
	if s.r.Modifiers() != 0 {
		t.Errorf("modifiers = %v after release", s.r.Modifiers())
	}
}

func TestShiftTabFromNothingFocusesLast(t *testing.T) {
	s := newScene(t)
	if !s.r.MoveFocus(-1) || s.r.Focused() != s.b.El() {
		t.Errorf("focused = %v, want b", s.r.Focused())
	}
}

func TestArrowKeysMoveDirectionally(t *testing.T) {
	s := newScene(t)
	s.r.Focus(s.a)
	s.r.KeyDown(KeyArrowRight, false)
	if s.r.Focused() != s.b.El() {
		t.Fatalf("after right: %v", s.r.Focused())
	}
	s.r.KeyDown(KeyArrowLeft, false)
	if s.r.Focused() != s.a.El() {
		t.Fatalf("after left: %v", s.r.Focused())
	}
	// Nothing below a, so Down falls back to linear order.
	s.r.KeyDown(KeyArrowDown, false)
	if s.r.Focused() != s.b.El() {
		t.Errorf("after down: %v", s.r.Focused())
	}
}

func TestKeyEventsBubbleUntilHandled(t *testing.T) {
	s := newScene(t)
	s.r.Focus(s.a)

	var log []string
	s.r.On(s.canvas).KeyDown.Add(func(e *KeyEvent) {
		log = append(log, "canvas:"+e.Source.Name()+":"+e.Key.String())
	})
	s.r.On(s.a).KeyDown.Add(func(e *KeyEvent) {
		log = append(log, "a")
		e.Handled = e.Key == KeyEnter
	})

	if s.r.KeyDown(KeyX, false) {
		t.Error("X should not be handled")
	}
	if !s.r.KeyDown(KeyEnter, false) {
		t.Error("Enter should be handled by a")
	}
	want := []string{"a", "canvas:a:X", "a"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}

	var typed string
	s.r.On(s.canvas).Text.Add(func(e *TextEvent) { typed += e.Text })
	s.r.Text("hi")
	s.r.Text("")
	if typed != "hi" {
		t.Errorf("typed = %q", typed)
	}
}

func TestClickFocusesAndPresses(t *testing.T) {
	s := newScene(t)
	var sources []string
	s.r.On(s.canvas).MouseDown.Add(func(e *MouseEvent) { sources = append(sources, e.Source.Name()) })

	s.r.MouseDown(layout.Point{X: 120, Y: 20}, MouseLeft)
	if s.r.Focused() != s.b.El() {
		t.Errorf("focused = %v, want b", s.r.Focused())
	}
	if !s.b.PseudoClass(PseudoPressed) {
		t.Error("b should be pressed")
	}
	s.r.MouseUp(layout.Point{X: 120, Y: 20}, MouseLeft)
	if s.b.PseudoClass(PseudoPressed) {
		t.Error("b still pressed after MouseUp")
	}

	s.r.MouseDown(layout.Point{X: 80, Y: 80}, MouseRight)
	if len(sources) != 2 || sources[0] != "b" || sources[1] != "" {
		t.Errorf("sources = %q", sources)
	}
	if s.r.Focused() != s.b.El() {
		t.Error("right click on the canvas should not move focus")
	}
}

func TestHoverTracksPointer(t *testing.T) {
	s := newScene(t)
	var entered, left int
	s.r.On(s.a).MouseEnter.Add(func(*MouseEvent) { entered++ })
	s.r.On(s.a).MouseLeave.Add(func(*MouseEvent) { left++ })

	s.r.MouseMove(layout.Point{X: 20, Y: 20})
	if s.r.Hovered() != s.a.El() || !s.a.PseudoClass(PseudoHover) || !s.canvas.PseudoClass(PseudoHover) {
		t.Fatal("a and canvas should be hovered")
	}
	s.r.MouseMove(layout.Point{X: 30, Y: 30})
	s.r.MouseMove(layout.Point{X: 120, Y: 20})
	if s.a.PseudoClass(PseudoHover) || !s.b.PseudoClass(PseudoHover) {
		t.Error("hover should move to b")
	}
	if entered != 1 || left != 1 {
		t.Errorf("entered = %d left = %d", entered, left)
	}
}

func TestCaptureRoutesMouse(t *testing.T) {
	s := newScene(t)
	var moves int
	s.r.On(s.a).MouseMove.Add(func(e *MouseEvent) {
		moves++
		e.Handled = true
	})
	if !s.r.Capture(s.a) {
		t.Fatal("capture refused")
	}
	if !s.r.MouseMove(layout.Point{X: 190, Y: 90}) || moves != 1 {
		t.Errorf("captured move not delivered, moves = %d", moves)
	}
	s.r.ReleaseCapture()
	s.r.MouseMove(layout.Point{X: 190, Y: 90})
	if moves != 1 {
		t.Errorf("move after release reached a")
	}
	if s.r.Capture(ui.NewBorder(nil)) {
		t.Error("detached element captured the mouse")
	}
}

func TestDisabledElementsAreSkipped(t *testing.T) {
	s := newScene(t)
	ui.Set(s.b, ui.IsEnabledProperty, false)
	s.p.Update(0)

	var got string
	s.r.On(s.canvas).MouseDown.Add(func(e *MouseEvent) { got = e.Source.Name() })
	s.r.MouseDown(layout.Point{X: 120, Y: 20}, MouseLeft)
	if s.r.Focused() != nil {
		t.Errorf("disabled b took focus")
	}
	if got != "" {
		t.Errorf("source = %q, want canvas", got)
	}
	if s.r.Focus(s.b) {
		t.Error("Focus on disabled element succeeded")
	}
	s.r.KeyDown(KeyTab, false)
	s.r.KeyDown(KeyTab, false)
	if s.r.Focused() != s.a.El() {
		t.Errorf("Tab should only visit a, got %v", s.r.Focused())
	}
}

func TestDetachClearsFocusAndCapture(t *testing.T) {
	s := newScene(t)
	s.r.Focus(s.a)
	s.r.Capture(s.a)
	s.r.MouseMove(layout.Point{X: 20, Y: 20})
	var lost int
	s.r.On(s.a).LostFocus.Add(func(FocusEvent) { lost++ })

	if err := s.canvas.RemoveChild(s.a); err != nil {
		t.Fatal(err)
	}
	if s.r.Focused() != nil || s.r.Captured() != nil {
		t.Errorf("focused = %v captured = %v", s.r.Focused(), s.r.Captured())
	}
	if lost != 1 || s.a.PseudoClass(PseudoFocus) || s.a.PseudoClass(PseudoHover) {
		t.Errorf("lost = %d, pseudo-classes not cleared", lost)
	}
}

func TestParseKey(t *testing.T) {
	for name, want := range map[string]Key{
		"tab":    KeyTab,
		"F11":    KeyF11,
		"q":      KeyQ,
		"7":      Key7,
		"bogus":  KeyUnknown,
		"Escape": KeyEscape,
	} {
		if got := ParseKey(name); got != want {
			t.Errorf("ParseKey(%q) = %v, want %v", name, got, want)
		}
	}
}
