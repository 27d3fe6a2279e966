package ui

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ultraviolet-go/upf/pkg/dependency"
	"github.com/ultraviolet-go/upf/pkg/layout"
)

// probe logs every MeasureOverride call.
type probe struct {
	Element
	log *[]string
}

func newProbe(name string, log *[]string) *probe {
	p := &probe{log: log}
	p.Init(ElementType, p)
	p.SetName(name)
	return p
}

func (p *probe) MeasureOverride(available layout.Size) layout.Size {
	*p.log = append(*p.log, p.Name())
	return p.measureChildren(available)
}

func (p *probe) ArrangeOverride(final layout.Size) layout.Size {
	p.arrangeChildren(final)
	return final
}

type drawCall struct {
	op   string
	rect layout.Rect
	text string
}

type fakeDC struct {
	calls []drawCall
}

func (d *fakeDC) FillRect(r layout.Rect, _ Color) { d.calls = append(d.calls, drawCall{op: "fill", rect: r}) }
func (d *fakeDC) StrokeRect(r layout.Rect, _ layout.Thickness, _ Color) {
	d.calls = append(d.calls, drawCall{op: "stroke", rect: r})
}
func (d *fakeDC) DrawText(s string, o layout.Point, _ Font, _ Color) {
	d.calls = append(d.calls, drawCall{op: "text", rect: layout.Rect{X: o.X, Y: o.Y}, text: s})
}

type classStyler struct{}

func (classStyler) ApplyStyle(e *Element) error {
	if e.HasClass("big") {
		return e.SetStyledAny(FontSizeProperty, "24")
	}
	return nil
}

func newPresenter(t *testing.T, root Visual, w, h float64) *Presenter {
	t.Helper()
	p := NewPresenter(layout.Size{Width: w, Height: h})
	if err := p.SetRoot(root); err != nil {
		t.Fatal(err)
	}
	p.Update(0)
	return p
}

func TestTreeErrors(t *testing.T) {
	root, child, other := NewElement(), NewElement(), NewElement()
	if err := root.AddChild(child); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", root.AddChild(nil), ErrNilElement},
		{"self", root.AddChild(root), ErrCycle},
		{"ancestor", child.AddChild(root), ErrCycle},
		{"parented", other.AddChild(child), ErrAlreadyParented},
		{"not child", other.RemoveChild(child), ErrNotChild},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.want) {
				t.Errorf("err = %v, want %v", tt.err, tt.want)
			}
		})
	}
	if len(root.Children()) != 1 || child.Parent() != root || child.Depth() != 1 {
		t.Error("failed operations must leave the tree unchanged")
	}
	if err := child.RemoveFromParent(); err != nil || child.Parent() != nil || len(root.Children()) != 0 {
		t.Errorf("RemoveFromParent: %v", err)
	}
}

func TestStackPanelLayout(t *testing.T) {
	stack := NewStackPanel(Vertical)
	Set(stack, SpacingProperty, 10)
	a := NewElement()
	Set(a, HeightProperty, 20)
	b := NewElement()
	Set(b, WidthProperty, 50)
	Set(b, HeightProperty, 30)
	Set(b, HorizontalAlignmentProperty, AlignCenter)
	_ = stack.AddChild(a)
	_ = stack.AddChild(b)

	newPresenter(t, stack, 200, 100)

	if got := stack.DesiredSize(); !got.Equal(layout.Size{Width: 50, Height: 60}) {
		t.Errorf("stack desired = %v", got)
	}
	if got := a.Bounds(); got != (layout.Rect{Width: 200, Height: 20}) {
		t.Errorf("a bounds = %v", got)
	}
	if got := b.AbsoluteBounds(); got != (layout.Rect{X: 75, Y: 30, Width: 50, Height: 30}) {
		t.Errorf("b absolute = %v", got)
	}
}

func TestHorizontalStackSkipsCollapsed(t *testing.T) {
	stack := NewStackPanel(Horizontal)
	Set(stack, SpacingProperty, 5)
	Set(stack, HorizontalAlignmentProperty, AlignStart)
	var kids []*Element
	for range 3 {
		e := NewElement()
		Set(e, WidthProperty, 10)
		Set(e, HeightProperty, 10)
		_ = stack.AddChild(e)
		kids = append(kids, e)
	}
	Set(kids[1], VisibilityProperty, Collapsed)

	newPresenter(t, stack, 100, 100)

	if got := stack.DesiredSize().Width; got != 25 {
		t.Errorf("desired width = %v, want 25", got)
	}
	if got := kids[2].Bounds().X; got != 15 {
		t.Errorf("third child x = %v, want 15", got)
	}
	if got := stack.RenderSize().Width; got != 25 {
		t.Errorf("start-aligned stack width = %v, want 25", got)
	}
}

func TestMeasureDrainsAncestorsFirst(t *testing.T) {
	var log []string
	root := newProbe("root", &log)
	mid := newProbe("mid", &log)
	leaf := newProbe("leaf", &log)
	_ = root.AddChild(mid)
	_ = mid.AddChild(leaf)
	p := newPresenter(t, root, 100, 100)

	log = nil
	leaf.InvalidateMeasure()
	mid.InvalidateMeasure()
	root.InvalidateMeasure()
	stats := p.Update(0).Stats
	if want := []string{"root", "mid", "leaf"}; !reflect.DeepEqual(log, want) {
		t.Errorf("measure order = %v, want %v", log, want)
	}
	if got := stats.Processed[layout.PassMeasure]; got != 1 {
		t.Errorf("measure pass processed %d nodes, want 1", got)
	}
}

func TestDesiredSizeChangeRemeasuresParent(t *testing.T) {
	var log []string
	root := newProbe("root", &log)
	leaf := newProbe("leaf", &log)
	_ = root.AddChild(leaf)
	Set(root, HorizontalAlignmentProperty, AlignStart)
	p := newPresenter(t, root, 100, 100)

	log = nil
	Set(leaf, WidthProperty, 40)
	p.Update(0)
	if want := []string{"leaf", "root"}; !reflect.DeepEqual(log, want) {
		t.Errorf("measure order = %v, want %v", log, want)
	}
	if got := root.RenderSize().Width; got != 40 {
		t.Errorf("root width = %v, want 40", got)
	}

	log = nil
	Set(leaf, OpacityProperty, 0.5)
	p.Update(0)
	if len(log) != 0 {
		t.Errorf("opacity change measured %v", log)
	}
}

func TestInheritedFontSizeMeasuresText(t *testing.T) {
	root := NewPanel()
	Set(root, FontSizeProperty, 20)
	text := NewTextBlock("abcd")
	Set(text, HorizontalAlignmentProperty, AlignStart)
	Set(text, VerticalAlignmentProperty, AlignStart)
	_ = root.AddChild(text)
	p := newPresenter(t, root, 200, 200)

	want := layout.Size{Width: 44, Height: 25}
	if got := text.RenderSize(); !got.Equal(want) {
		t.Errorf("text size = %v, want %v", got, want)
	}

	Set(root, FontSizeProperty, 10)
	p.Update(0)
	want = layout.Size{Width: 22, Height: 12.5}
	if got := text.RenderSize(); !got.Equal(want) {
		t.Errorf("text size after inherit change = %v, want %v", got, want)
	}
}

func TestTextWrapping(t *testing.T) {
	m := EstimateTextMeasurer{}
	f := Font{Size: 10}
	lines, size := LayoutText(m, "aa bb cc\ndd", f, 20, true)
	if want := []string{"aa", "bb", "cc", "dd"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %q, want %q", lines, want)
	}
	if !size.Equal(layout.Size{Width: 11, Height: 50}) {
		t.Errorf("size = %v", size)
	}
	lines, _ = LayoutText(m, "aa bb", f, 20, false)
	if len(lines) != 1 {
		t.Errorf("unwrapped lines = %q", lines)
	}
}

func TestBorderChrome(t *testing.T) {
	text := NewTextBlock("hi")
	b := NewBorder(text)
	Set(b, BorderThicknessProperty, layout.Uniform(1))
	Set(b, PaddingProperty, layout.Uniform(4))
	Set(b, HorizontalAlignmentProperty, AlignStart)
	Set(b, VerticalAlignmentProperty, AlignStart)
	Set(b, BorderBrushProperty, Black)
	newPresenter(t, b, 100, 100)

	if got, want := b.DesiredSize(), (layout.Size{Width: 27.6, Height: 30}); !got.Equal(want) {
		t.Errorf("border desired = %v, want %v", got, want)
	}
	if got := text.AbsolutePosition(); got != (layout.Point{X: 5, Y: 5}) {
		t.Errorf("text position = %v", got)
	}

	other := NewTextBlock("x")
	if err := b.SetChild(other); err != nil {
		t.Fatal(err)
	}
	if b.Child() != other.El() || text.Parent() != nil {
		t.Error("SetChild did not replace the child")
	}
}

func TestCanvasZIndexHitTest(t *testing.T) {
	canvas := NewCanvas()
	Set(canvas, BackgroundProperty, White)
	first, second := NewPanel(), NewPanel()
	for i, p := range []*Panel{first, second} {
		Set(p, WidthProperty, 50)
		Set(p, HeightProperty, 50)
		Set(p, BackgroundProperty, Black)
		SetPosition(p, float64(10+20*i), float64(10+20*i))
		_ = canvas.AddChild(p)
	}
	p := newPresenter(t, canvas, 200, 200)

	if got := p.HitTest(layout.Point{X: 40, Y: 40}); got != second.El() {
		t.Errorf("hit = %v, want second", got)
	}
	Set(second, ZIndexProperty, -1)
	p.Update(0)
	var r HitTestResult
	if !p.HitTestAll(layout.Point{X: 40, Y: 40}, &r) || r.Target() != first.El() {
		t.Fatalf("hit after ZIndex = %v", r.Path)
	}
	if len(r.Path) != 2 || r.Path[1] != canvas.El() {
		t.Errorf("path = %v, want [first canvas]", r.Path)
	}
	if got := p.HitTest(layout.Point{X: 150, Y: 150}); got != canvas.El() {
		t.Errorf("background hit = %v", got)
	}
	Set(first, IsHitTestVisibleProperty, false)
	p.Update(0)
	if got := p.HitTest(layout.Point{X: 20, Y: 20}); got != canvas.El() {
		t.Errorf("hit through invisible = %v", got)
	}
}

func TestRenderSkipsHiddenAndOrders(t *testing.T) {
	root := NewStackPanel(Vertical)
	shown := NewTextBlock("a")
	hidden := NewTextBlock("b")
	Set(hidden, VisibilityProperty, Hidden)
	faded := NewTextBlock("c")
	Set(faded, OpacityProperty, 0)
	for _, c := range []Visual{shown, hidden, faded} {
		_ = root.AddChild(c)
	}
	p := newPresenter(t, root, 100, 100)

	var dc fakeDC
	p.Render(&dc)
	if len(dc.calls) != 1 || dc.calls[0].text != "a" {
		t.Errorf("calls = %+v", dc.calls)
	}
	if got := hidden.RenderSize().Height; got == 0 {
		t.Error("hidden element should still take space")
	}
}

func TestStylerAppliesAndClears(t *testing.T) {
	root := NewPanel()
	text := NewTextBlock("x")
	_ = root.AddChild(text)
	p := NewPresenter(layout.Size{Width: 100, Height: 100})
	p.SetStyler(classStyler{})
	_ = p.SetRoot(root)
	text.AddClass("big")
	p.Update(0)
	if got := Get(text, FontSizeProperty); got != 24 {
		t.Fatalf("styled font size = %v", got)
	}

	text.RemoveClass("BIG")
	p.Update(0)
	if got := Get(text, FontSizeProperty); got != 16 {
		t.Errorf("font size after RemoveClass = %v", got)
	}
	Set(text, FontSizeProperty, 30)
	text.AddClass("big")
	p.Update(0)
	if got := Get(text, FontSizeProperty); got != 30 {
		t.Errorf("local must win over style, got %v", got)
	}
}

func TestDetachLeavesQueues(t *testing.T) {
	root := NewPanel()
	child := NewPanel()
	grand := NewTextBlock("x")
	_ = child.AddChild(grand)
	_ = root.AddChild(child)
	p := newPresenter(t, root, 100, 100)

	var detached []*Element
	p.Detached.Add(func(e *Element) { detached = append(detached, e) })
	grand.InvalidateMeasure()
	Set(grand, TextProperty, "y")
	if err := root.RemoveChild(child); err != nil {
		t.Fatal(err)
	}
	if want := []*Element{child.El(), grand.El()}; !reflect.DeepEqual(detached, want) {
		t.Errorf("detached = %v", detached)
	}
	for _, pass := range layout.Passes {
		if p.Pipeline().Scheduled(pass, grand.El()) {
			t.Errorf("grandchild still queued for %s", pass)
		}
	}
	if grand.Presenter() != nil || grand.Depth() != 1 || child.Depth() != 0 {
		t.Error("detached subtree not reset")
	}

	old := root
	next := NewPanel()
	_ = p.SetRoot(next)
	if old.Presenter() != nil || p.Root() != next.El() {
		t.Error("SetRoot did not detach the previous root")
	}
}

type caption struct{ Title string }

func TestSetRootReleasesPreviousRoot(t *testing.T) {
	old := NewTextBlock("")
	old.SetDataContext(&caption{Title: "hello"})
	if err := ValueOf(old, TextProperty).Bind("Title", reflect.TypeFor[*caption](), dependency.BindDefault); err != nil {
		t.Fatal(err)
	}
	ValueOf(old, OpacityProperty).SetAnimated(0.5)
	p := newPresenter(t, old, 100, 100)
	if Get(old, TextProperty) != "hello" || Get(old, OpacityProperty) != 0.5 {
		t.Fatalf("text = %q opacity = %v", Get(old, TextProperty), Get(old, OpacityProperty))
	}

	next := NewPanel()
	if err := p.SetRoot(next); err != nil {
		t.Fatal(err)
	}
	if old.Presenter() != nil || p.Root() != next.El() {
		t.Fatal("SetRoot did not detach the previous root")
	}
	if b, _ := ValueOf(old, TextProperty).Binding(); b != nil {
		t.Error("previous root kept its binding")
	}
	if _, ok := ValueOf(old, OpacityProperty).Animated(); ok {
		t.Error("previous root kept its animated layer")
	}
	if old.MeasureValid() || old.ArrangeValid() {
		t.Error("previous root kept its layout results")
	}
	for _, pass := range layout.Passes {
		if p.Pipeline().Scheduled(pass, old.El()) {
			t.Errorf("previous root still queued for %s", pass)
		}
	}
}

// stateStyler disables elements with class "locked" and enlarges the text
// of disabled elements.
type stateStyler struct{}

func (stateStyler) ApplyStyle(e *Element) error {
	if e.HasClass("locked") {
		if err := e.SetStyledAny(IsEnabledProperty, "false"); err != nil {
			return err
		}
	}
	if e.PseudoClass(PseudoDisabled) {
		return e.SetStyledAny(FontSizeProperty, "24")
	}
	return nil
}

func TestStyledDisableSchedulesNoViolations(t *testing.T) {
	root := NewStackPanel(Vertical)
	group := NewStackPanel(Vertical)
	label := NewTextBlock("a")
	_ = group.AddChild(label)
	_ = root.AddChild(group)
	p := newPresenter(t, root, 200, 200)
	p.SetStyler(stateStyler{})

	steps := []struct {
		name     string
		mutate   func()
		disabled bool
		size     float64
	}{
		{"initial", func() {}, false, 16},
		{"lock", func() { group.AddClass("locked") }, true, 24},
		{"unlock", func() { group.RemoveClass("locked") }, false, 16},
	}
	for _, step := range steps {
		step.mutate()
		info := p.Update(0)
		if info.Stats.Violations != 0 || info.Stats.Errors != 0 {
			t.Errorf("%s: violations = %d errors = %d", step.name, info.Stats.Violations, info.Stats.Errors)
		}
		if p.LastFrame().Stats.Violations != 0 {
			t.Errorf("%s: LastFrame violations = %d", step.name, p.LastFrame().Stats.Violations)
		}
		for _, e := range []*Element{group.El(), label.El()} {
			if e.PseudoClass(PseudoDisabled) != step.disabled {
				t.Errorf("%s: %s disabled = %v", step.name, e, e.PseudoClass(PseudoDisabled))
			}
		}
		if got := Get(label, FontSizeProperty); got != step.size {
			t.Errorf("%s: label font size = %v, want %v", step.name, got, step.size)
		}
		if root.PseudoClass(PseudoDisabled) {
			t.Errorf("%s: root must stay enabled", step.name)
		}
	}
}

func TestSnapshot(t *testing.T) {
	root := NewPanel()
	root.SetName("main")
	root.AddClass("card")
	_ = root.AddChild(NewTextBlock("hello"))
	p := newPresenter(t, root, 50, 40)

	s := p.Snapshot()
	if s == nil || s.Type != "Panel" || s.Name != "main" || len(s.Children) != 1 {
		t.Fatalf("snapshot = %+v", s)
	}
	if s.Width != 50 || s.Height != 40 {
		t.Errorf("root size = %vx%v", s.Width, s.Height)
	}
	child := s.Children[0]
	found := false
	for _, v := range child.Values {
		if v.Property == "TextBlock.Text" && v.Value == "hello" && v.Source == "local" {
			found = true
		}
	}
	if !found {
		t.Errorf("text value missing from %+v", child.Values)
	}
}
