package dependency

import (
	"errors"
	"math"
	"reflect"
	"testing"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
)

var (
	baseType  = NewType("Element", nil)
	panelType = NewType("Panel", baseType)
)

type recorder struct {
	binding []*uverrors.BindingError
}

func (r *recorder) HandleError(*uverrors.UVError)               {}
func (r *recorder) HandlePanic(*uverrors.PanicError)            {}
func (r *recorder) HandlePipelineError(*uverrors.PipelineError) {}
func (r *recorder) HandleBindingError(e *uverrors.BindingError) { r.binding = append(r.binding, e) }

func installRecorder(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{}
	uverrors.SetHandler(r)
	t.Cleanup(func() { uverrors.SetHandler(nil) })
	return r
}

func mustRegister[T any](t *testing.T, r *Registry, owner *Type, name string, md Metadata[T]) *Property[T] {
	t.Helper()
	p, err := Register(r, owner, name, md)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestTypeSearchList(t *testing.T) {
	button := NewType("Button", panelType)
	got := button.SearchList()
	want := []*Type{button, panelType, baseType}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SearchList = %v, want %v", got, want)
	}
	if !button.IsA(baseType) || baseType.IsA(button) {
		t.Error("IsA wrong")
	}
	if !button.IsNamed("panel") {
		t.Error("IsNamed should match bases case-insensitively")
	}
}

func TestRegistryDuplicateAndLookup(t *testing.T) {
	r := NewRegistry()
	width := mustRegister(t, r, baseType, "Width", Metadata[float64]{})

	_, err := Register(r, baseType, "width", Metadata[float64]{})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate err = %v", err)
	}
	var uv *uverrors.UVError
	if !errors.As(err, &uv) || uv.Kind != uverrors.KindRegistration {
		t.Errorf("expected KindRegistration, got %v", err)
	}

	// Same name on a derived type is a different key.
	if _, err := Register(r, panelType, "Width", Metadata[float64]{}); err != nil {
		t.Errorf("shadowing registration failed: %v", err)
	}

	got, err := r.Lookup(NewType("Button", baseType), "WIDTH")
	if err != nil || got != Key(width) {
		t.Errorf("Lookup through base = %v, %v", got, err)
	}
	if _, err := r.Lookup(baseType, "Missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if _, err := r.Find(panelType, "Element.Width"); err != nil {
		t.Errorf("qualified Find: %v", err)
	}
	if _, err := Register(r, nil, "x", Metadata[int]{}); !errors.Is(err, ErrInvalid) {
		t.Errorf("nil owner err = %v", err)
	}

	r.Freeze()
	if _, err := Register(r, baseType, "Height", Metadata[float64]{}); !errors.Is(err, ErrFrozen) {
		t.Errorf("frozen err = %v", err)
	}
	if n := len(r.Properties(panelType)); n != 2 {
		t.Errorf("Properties(panel) = %d, want 2", n)
	}
}

func TestPrecedenceLadder(t *testing.T) {
	r := NewRegistry()
	p := mustRegister(t, r, baseType, "Level", Metadata[int]{Options: Inherits})

	parent := NewObject(baseType)
	child := NewObject(baseType)
	if err := child.SetParent(parent); err != nil {
		t.Fatal(err)
	}

	Set(parent, p, 1)
	parent.DigestPending()

	v := ValueOf(child, p)
	v.SetStyled(2)
	v.SetLocal(3)
	v.SetAnimated(5)

	steps := []struct {
		name   string
		mutate func()
		want   int
		src    ValueSource
	}{
		{"all layers", func() {}, 5, SourceAnimated},
		{"no animated", v.ClearAnimated, 3, SourceLocal},
		{"no local", v.ClearLocal, 2, SourceStyled},
		{"no styled", v.ClearStyled, 1, SourceInherited},
		{"no inherited", func() {
			ValueOf(parent, p).ClearLocal()
			parent.DigestPending()
		}, 0, SourceDefault},
	}
	for _, s := range steps {
		s.mutate()
		child.DigestPending()
		if got := v.Get(); got != s.want {
			t.Errorf("%s: value = %d, want %d", s.name, got, s.want)
		}
		if v.Source() != s.src {
			t.Errorf("%s: source = %s, want %s", s.name, v.Source(), s.src)
		}
	}
}

func TestDigestIdempotent(t *testing.T) {
	r := NewRegistry()
	calls := 0
	p := mustRegister(t, r, baseType, "Width", Metadata[float64]{
		Default: func() float64 { return math.NaN() },
		Changed: func(*Object, float64, float64) { calls++ },
	})
	o := NewObject(baseType)
	v := ValueOf(o, p)

	if v.Digest() || v.Digest() {
		t.Fatal("digest without change must report unchanged (NaN default)")
	}
	v.SetLocal(10)
	if !v.Digest() {
		t.Fatal("first digest after change must report changed")
	}
	if v.Digest() {
		t.Fatal("second digest must report unchanged")
	}
	if calls != 1 {
		t.Errorf("Changed called %d times, want 1", calls)
	}
	v.SetLocal(10)
	if v.Digest() {
		t.Error("setting an equal value must not report a change")
	}
}

func TestSchedulerCalledOncePerPendingBatch(t *testing.T) {
	r := NewRegistry()
	a := mustRegister(t, r, baseType, "A", Metadata[int]{})
	b := mustRegister(t, r, baseType, "B", Metadata[int]{})
	o := NewObject(baseType)
	scheduled := 0
	o.SetScheduler(SchedulerFunc(func(*Object) { scheduled++ }))

	Set(o, a, 1)
	Set(o, a, 2)
	Set(o, b, 3)
	if scheduled != 2 {
		// one per newly pending value
		t.Errorf("scheduled = %d, want 2", scheduled)
	}
	if n := o.DigestPending(); n != 2 {
		t.Errorf("DigestPending = %d, want 2", n)
	}
	if o.HasPending() {
		t.Error("nothing should remain pending")
	}
	if Get(o, a) != 2 || Get(o, b) != 3 {
		t.Errorf("values = %d, %d", Get(o, a), Get(o, b))
	}
}

func TestChangedCallbackOrderAndEvent(t *testing.T) {
	r := NewRegistry()
	var order []string
	p := mustRegister(t, r, baseType, "Name", Metadata[string]{
		Changed: func(_ *Object, old, next string) { order = append(order, "meta:"+old+">"+next) },
	})
	o := NewObject(baseType)
	o.PropertyChanged.Add(func(c Change) {
		order = append(order, "event:"+c.Property.Name()+"="+c.New.(string))
	})
	Set(o, p, "x")
	o.DigestPending()
	want := []string{"meta:>x", "event:Name=x"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestInheritancePropagatesOnReparent(t *testing.T) {
	r := NewRegistry()
	size := mustRegister(t, r, baseType, "FontSize", Metadata[float64]{
		Default: func() float64 { return 12 },
		Options: Inherits,
	})
	root := NewObject(baseType)
	Set(root, size, 20)
	root.DigestPending()

	mid := NewObject(baseType)
	leaf := NewObject(baseType)
	if err := leaf.SetParent(mid); err != nil {
		t.Fatal(err)
	}
	var leafChanges []Change
	leaf.PropertyChanged.Add(func(c Change) { leafChanges = append(leafChanges, c) })

	if err := mid.SetParent(root); err != nil {
		t.Fatal(err)
	}
	if got := Get(leaf, size); got != 20 {
		t.Fatalf("leaf FontSize = %v, want 20", got)
	}
	if len(leafChanges) != 1 || leafChanges[0].Old != 12.0 {
		t.Errorf("leaf changes = %+v", leafChanges)
	}

	Set(root, size, 30)
	root.DigestPending()
	if got := Get(leaf, size); got != 30 {
		t.Errorf("after root change leaf = %v", got)
	}

	if err := mid.SetParent(nil); err != nil {
		t.Fatal(err)
	}
	if got := Get(leaf, size); got != 12 {
		t.Errorf("after detach leaf = %v, want default", got)
	}
	if len(root.Children()) != 0 {
		t.Error("root still lists detached child")
	}
}

func TestLocalValueBlocksInheritance(t *testing.T) {
	r := NewRegistry()
	size := mustRegister(t, r, baseType, "FontSize", Metadata[float64]{Options: Inherits})
	root, child, grandchild := NewObject(baseType), NewObject(baseType), NewObject(baseType)
	_ = child.SetParent(root)
	_ = grandchild.SetParent(child)

	Set(child, size, 8)
	child.DigestPending()
	Set(root, size, 40)
	root.DigestPending()

	if got := Get(child, size); got != 8 {
		t.Errorf("child = %v, want local 8", got)
	}
	if got := Get(grandchild, size); got != 8 {
		t.Errorf("grandchild = %v, want 8 inherited from child", got)
	}
}

func TestSetParentRejectsCycle(t *testing.T) {
	a, b := NewObject(baseType), NewObject(baseType)
	if err := b.SetParent(a); err != nil {
		t.Fatal(err)
	}
	if err := a.SetParent(b); !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v, want ErrCycle", err)
	}
	if err := a.SetParent(a); !errors.Is(err, ErrCycle) {
		t.Errorf("self parent err = %v", err)
	}
}

type player struct {
	Name  string
	Guild *guild
}

type guild struct {
	Title string
}

func TestBindingNilIntermediateFallsBackToDefault(t *testing.T) {
	rec := installRecorder(t)
	r := NewRegistry()
	title := mustRegister(t, r, baseType, "Title", Metadata[string]{
		Default: func() string { return "none" },
	})
	o := NewObject(baseType)
	src := &player{}
	o.SetDataSource(src)

	v := ValueOf(o, title)
	if err := v.Bind("Guild.Title", reflect.TypeFor[*player](), BindDefault); err != nil {
		t.Fatal(err)
	}
	v.Digest()
	if v.Get() != "none" || v.Source() != SourceDefault {
		t.Errorf("value = %q (%s), want default", v.Get(), v.Source())
	}
	v.Invalidate()
	v.Digest()
	if len(rec.binding) != 1 {
		t.Errorf("binding errors reported %d times, want once per failure transition", len(rec.binding))
	}

	src.Guild = &guild{Title: "Knights"}
	o.InvalidateBindings()
	o.DigestPending()
	if v.Get() != "Knights" || v.Source() != SourceBinding {
		t.Errorf("value = %q (%s)", v.Get(), v.Source())
	}

	src.Guild = nil
	o.InvalidateBindings()
	o.DigestPending()
	if v.Get() != "none" || len(rec.binding) != 2 {
		t.Errorf("value = %q, reports = %d", v.Get(), len(rec.binding))
	}
}

func TestBindErrorsAreHard(t *testing.T) {
	r := NewRegistry()
	p := mustRegister(t, r, baseType, "Name", Metadata[string]{})
	v := ValueOf(NewObject(baseType), p)

	err := v.Bind("Name", nil, BindOneWay)
	var uv *uverrors.UVError
	if !errors.As(err, &uv) || uv.Kind != uverrors.KindBinding {
		t.Fatalf("missing source type err = %v", err)
	}
	if uv.Property != "Element.Name" {
		t.Errorf("Property = %q", uv.Property)
	}

	if err := v.Bind("Name", reflect.TypeFor[player](), BindTwoWay); err == nil {
		t.Error("two-way binding on a read-only path should fail")
	}
}

func TestTwoWayBindingWritesSource(t *testing.T) {
	r := NewRegistry()
	p := mustRegister(t, r, baseType, "Text", Metadata[string]{Options: BindsTwoWayByDefault})
	o := NewObject(baseType)
	src := &player{Name: "ana"}
	o.SetDataSource(src)

	v := ValueOf(o, p)
	if err := v.Bind("Name", reflect.TypeFor[*player](), BindDefault); err != nil {
		t.Fatal(err)
	}
	if _, mode := v.Binding(); mode != BindTwoWay {
		t.Fatalf("mode = %s, want TwoWay", mode)
	}
	o.DigestPending()
	if v.Get() != "ana" {
		t.Fatalf("value = %q", v.Get())
	}

	v.SetLocal("bo")
	if src.Name != "bo" {
		t.Errorf("source Name = %q, want written through", src.Name)
	}
	o.DigestPending()
	if v.Get() != "bo" || v.Source() != SourceBinding {
		t.Errorf("value = %q (%s)", v.Get(), v.Source())
	}
}

func TestOneWayBindingClearedByLocalSet(t *testing.T) {
	r := NewRegistry()
	p := mustRegister(t, r, baseType, "Text", Metadata[string]{})
	o := NewObject(baseType)
	o.SetDataSource(&player{Name: "ana"})
	v := ValueOf(o, p)
	if err := v.Bind("Name", reflect.TypeFor[*player](), BindOneWay); err != nil {
		t.Fatal(err)
	}
	v.SetLocal("manual")
	o.DigestPending()
	if b, _ := v.Binding(); b != nil {
		t.Error("one-way binding should be removed by a local set")
	}
	if v.Get() != "manual" {
		t.Errorf("value = %q", v.Get())
	}
}

func TestDataSourceInheritedFromAncestor(t *testing.T) {
	r := NewRegistry()
	p := mustRegister(t, r, baseType, "Text", Metadata[string]{})
	root, child := NewObject(baseType), NewObject(baseType)
	_ = child.SetParent(root)
	v := ValueOf(child, p)
	if err := v.Bind("Name", reflect.TypeFor[*player](), BindOneWay); err != nil {
		t.Fatal(err)
	}
	root.SetDataSource(&player{Name: "root"})
	child.DigestPending()
	if v.Get() != "root" {
		t.Errorf("value = %q", v.Get())
	}
	child.SetDataSource(&player{Name: "own"})
	child.DigestPending()
	if v.Get() != "own" {
		t.Errorf("value = %q", v.Get())
	}
}

func TestUntypedAccess(t *testing.T) {
	r := NewRegistry()
	w := mustRegister(t, r, baseType, "Width", Metadata[float64]{Default: func() float64 { return math.NaN() }})
	o := NewObject(baseType)

	if err := o.SetStyledAny(w, "12px"); err != nil {
		t.Fatal(err)
	}
	if err := o.SetLocalAny(w, 7); err != nil {
		t.Fatal(err)
	}
	o.DigestPending()
	if got := o.GetAny(w); got != 7.0 {
		t.Errorf("GetAny = %v", got)
	}
	ValueOf(o, w).ClearLocal()
	o.DigestPending()
	if got := o.GetAny(w); got != 12.0 || o.SourceOf(w) != SourceStyled {
		t.Errorf("styled = %v (%s)", got, o.SourceOf(w))
	}
	o.ClearStyled()
	o.DigestPending()
	if got := o.GetAny(w).(float64); !math.IsNaN(got) {
		t.Errorf("after ClearStyled = %v, want NaN default", got)
	}
	if err := o.SetStyledAny(w, "wide"); err == nil {
		t.Error("unparseable text should fail")
	}

	var seen []string
	o.VisitValues(func(k Key, _ any, src ValueSource) { seen = append(seen, k.Name()+":"+src.String()) })
	if !reflect.DeepEqual(seen, []string{"Width:default"}) {
		t.Errorf("VisitValues = %v", seen)
	}
}

func TestReleaseDropsBindingAndAnimation(t *testing.T) {
	r := NewRegistry()
	p := mustRegister(t, r, baseType, "Text", Metadata[string]{})
	o := NewObject(baseType)
	o.SetDataSource(&player{Name: "ana"})
	v := ValueOf(o, p)
	_ = v.Bind("Name", reflect.TypeFor[*player](), BindOneWay)
	v.SetAnimated("anim")
	o.DigestPending()

	o.Release()
	o.DigestPending()
	if b, _ := v.Binding(); b != nil {
		t.Error("binding survived Release")
	}
	if _, ok := v.Animated(); ok {
		t.Error("animation survived Release")
	}
	if v.Get() != "" {
		t.Errorf("value = %q, want default", v.Get())
	}
}
