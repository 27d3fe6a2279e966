package content

import (
	"errors"
	"testing"
	"testing/fstest"
	"time"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/ui"
	"github.com/ultraviolet-go/upf/pkg/uvtest"
)

type theme struct {
	Name   string        `yaml:"name"`
	Accent ui.Color      `yaml:"accent"`
	Fade   time.Duration `yaml:"fade"`
}

type player struct {
	Name  string
	Score int
}

type game struct {
	Player *player
}

var assets = fstest.MapFS{
	"themes/dark.yaml": {Data: []byte("name: dark\naccent: '#ff8000'\nfade: 250ms\n")},
	"notes.txt":        {Data: []byte("hello")},
	"broken.yml":       {Data: []byte("name: [\n")},
	"layouts/hud.yaml": {Data: []byte(`
type: StackPanel
name: hud
properties:
  orientation: horizontal
  spacing: 4
children:
  - type: TextBlock
    classes: [title, big]
    properties:
      font-size: 20
    bindings:
      text: Player.Name
  - type: Canvas
    children:
      - type: Border
        properties:
          Canvas.Left: 12
          width: 30
          height: 10
`)},
}

func TestMapLoader(t *testing.T) {
	l := MapLoader{
		"size":  layout.Size{Width: 1, Height: 2},
		"speed": "1.5",
		"title": "UPF",
		"none":  nil,
	}
	if got, err := TryLoad[layout.Size](l, "size"); err != nil || got.Height != 2 {
		t.Errorf("size = %v, %v", got, err)
	}
	if got, err := TryLoad[float64](l, "speed"); err != nil || got != 1.5 {
		t.Errorf("speed = %v, %v", got, err)
	}
	if got, err := TryLoad[string](l, "title"); err != nil || got != "UPF" {
		t.Errorf("title = %q, %v", got, err)
	}
	if got, err := TryLoad[*player](l, "none"); err != nil || got != nil {
		t.Errorf("none = %v, %v", got, err)
	}
	if _, err := TryLoad[int](l, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if _, err := TryLoad[int](l, "size"); err == nil {
		t.Error("loading a Size as int should fail")
	}
	if err := l.Load("title", "not a pointer"); err == nil {
		t.Error("non-pointer destination accepted")
	}
}

func TestLoadIsTolerant(t *testing.T) {
	h := uvtest.InstallHandler(t)
	l := DirLoader{FS: assets}

	if got := Load[theme](l, "themes/missing"); got != (theme{}) {
		t.Errorf("missing theme = %+v, want zero", got)
	}
	if got := Load[theme](l, "broken"); got != (theme{}) {
		t.Errorf("broken theme = %+v, want zero", got)
	}
	errs := h.Errors()
	if len(errs) != 2 {
		t.Fatalf("reported %d errors, want 2", len(errs))
	}
	for _, e := range errs {
		if e.Kind != uverrors.KindContent || e.Op != "content.Load" {
			t.Errorf("error = %v (%v)", e, e.Kind)
		}
	}
	if !errors.Is(errs[0], ErrNotFound) {
		t.Errorf("first error should wrap ErrNotFound: %v", errs[0])
	}
}

func TestDirLoader(t *testing.T) {
	l := DirLoader{FS: assets}
	th, err := TryLoad[theme](l, "themes/dark")
	if err != nil {
		t.Fatal(err)
	}
	if th.Name != "dark" || th.Accent.String() != "#ff8000" || th.Fade != 250*time.Millisecond {
		t.Errorf("theme = %+v", th)
	}
	if s, err := TryLoad[string](l, "notes.txt"); err != nil || s != "hello" {
		t.Errorf("raw text = %q, %v", s, err)
	}
	if b, err := TryLoad[[]byte](l, "themes/dark.yaml"); err != nil || len(b) == 0 {
		t.Errorf("raw bytes = %d, %v", len(b), err)
	}
	if _, err := TryLoad[theme](l, "../escape"); err == nil {
		t.Error("invalid path accepted")
	}
}

type countingLoader struct {
	Loader
	calls int
}

func (c *countingLoader) Load(id string, dst any) error {
	c.calls++
	return c.Loader.Load(id, dst)
}

func TestCache(t *testing.T) {
	inner := &countingLoader{Loader: DirLoader{FS: assets}}
	c := NewCache(inner)

	a, _ := TryLoad[theme](c, "themes/dark")
	a.Name = "mutated"
	b, _ := TryLoad[theme](c, "themes/dark")
	if b.Name != "dark" {
		t.Errorf("cache shares caller memory: %q", b.Name)
	}
	_, _ = TryLoad[string](c, "themes/dark.yaml")
	_, _ = TryLoad[theme](c, "themes/nope")
	_, _ = TryLoad[theme](c, "themes/nope")
	if inner.calls != 4 || c.Len() != 2 {
		t.Errorf("calls = %d len = %d", inner.calls, c.Len())
	}
	c.Purge()
	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d", c.Len())
	}
}

func TestLoadTree(t *testing.T) {
	data := &game{Player: &player{Name: "ana"}}
	v, err := LoadTree(DirLoader{FS: assets}, "layouts/hud", data)
	if err != nil {
		t.Fatal(err)
	}
	stack, ok := v.(*ui.StackPanel)
	if !ok {
		t.Fatalf("root = %T, want *ui.StackPanel", v)
	}
	p := ui.NewPresenter(layout.Size{Width: 300, Height: 100})
	if err := p.SetRoot(stack); err != nil {
		t.Fatal(err)
	}
	p.Update(0)

	if stack.Name() != "hud" || ui.Get(stack, ui.OrientationProperty) != ui.Horizontal || ui.Get(stack, ui.SpacingProperty) != 4 {
		t.Errorf("stack properties not applied")
	}
	text, ok := stack.Children()[0].Self().(*ui.TextBlock)
	if !ok {
		t.Fatalf("first child = %T", stack.Children()[0].Self())
	}
	if text.Text() != "ana" || !text.HasClass("big") || ui.Get(text, ui.FontSizeProperty) != 20 {
		t.Errorf("text = %q classes = %v size = %v", text.Text(), text.Classes(), ui.Get(text, ui.FontSizeProperty))
	}
	border := stack.Children()[1].Children()[0]
	if got := ui.Get(border, ui.LeftProperty); got != 12 {
		t.Errorf("Canvas.Left = %v", got)
	}
}

func TestBuildSkipsBadProperties(t *testing.T) {
	doc := &Document{
		Type: "border",
		Properties: map[string]string{
			"width":   "10",
			"bogus":   "1",
			"opacity": "very",
		},
		Bindings: map[string]string{"Padding": "X"},
	}
	v, err := Build(doc, nil)
	if v == nil {
		t.Fatal("tree not returned")
	}
	var uv *uverrors.UVError
	if !errors.As(err, &uv) || uv.Kind != uverrors.KindContent {
		t.Fatalf("err = %v, want KindContent", err)
	}
	if n := len(err.(interface{ Unwrap() []error }).Unwrap()); n != 3 {
		t.Errorf("failures = %d, want 3", n)
	}

	if _, err := Build(&Document{Type: "Slider"}, nil); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type err = %v", err)
	}
}
