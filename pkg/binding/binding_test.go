package binding

import (
	"errors"
	"math"
	"reflect"
	"testing"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
)

type address struct {
	City string
	Zip  int
}

type person struct {
	Name    string
	Address *address
	Home    address
	Tags    map[string]string
	Pet     any
	secret  string
}

func (p person) Greeting() string { return "hi " + p.Name }

func (p *person) Upper() string { return "HI " + p.Name }

func (p person) CurrentAddress() *address { return p.Address }

type pet struct{ Kind string }

type viewModel struct {
	Player *person
	Score  float64
}

var (
	personPtr    = reflect.TypeFor[*person]()
	personValue  = reflect.TypeFor[person]()
	viewModelPtr = reflect.TypeFor[*viewModel]()
)

func TestParseExpression(t *testing.T) {
	tests := []struct {
		in       string
		path     []string
		noSource bool
		literal  string
		wantErr  bool
	}{
		{in: "Name", path: []string{"Name"}},
		{in: "{{ Player.Address.City }}", path: []string{"Player", "Address", "City"}},
		{in: "=12.5", noSource: true, literal: "12.5"},
		{in: "{{= hello}}", noSource: true, literal: "hello"},
		{in: "", wantErr: true},
		{in: "{{}}", wantErr: true},
		{in: "a..b", wantErr: true},
		{in: "a.1b", wantErr: true},
		{in: "a-b", wantErr: true},
		{in: "_x.y2", path: []string{"_x", "y2"}},
	}
	for _, tt := range tests {
		got, err := ParseExpression(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("ParseExpression(%q) err = %v, want ErrSyntax", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseExpression(%q) unexpected error %v", tt.in, err)
			continue
		}
		if got.NoSource != tt.noSource || got.Literal != tt.literal || !reflect.DeepEqual(got.Path, tt.path) {
			t.Errorf("ParseExpression(%q) = %+v", tt.in, got)
		}
	}
}

func TestGetFieldPath(t *testing.T) {
	b, err := Compile[string]("Address.City", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	p := &person{Address: &address{City: "Oslo"}}
	if got, err := b.Get(p); err != nil || got != "Oslo" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestGetNilIntermediateYieldsZero(t *testing.T) {
	b, err := Compile[string]("Player.Address.City", viewModelPtr)
	if err != nil {
		t.Fatal(err)
	}

	cases := []any{
		&viewModel{},                   // Player nil
		&viewModel{Player: &person{}},  // Address nil
		(*viewModel)(nil),              // source nil pointer
		nil,                            // no source at all
	}
	for i, src := range cases {
		got, err := b.Get(src)
		if got != "" {
			t.Errorf("case %d: Get = %q, want zero value", i, got)
		}
		if err == nil {
			t.Errorf("case %d: expected an error describing the short-circuit", i)
		}
	}
}

func TestGetMethodsAndMaps(t *testing.T) {
	p := &person{Name: "ana", Tags: map[string]string{"role": "admin"}}

	greet, err := Compile[string]("Greeting", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	if got := greet.Value(p); got != "hi ana" {
		t.Errorf("Greeting = %q", got)
	}
	if !greet.ReadOnly() {
		t.Error("method binding must be read-only")
	}

	upper, err := Compile[string]("Upper", personValue)
	if err != nil {
		t.Fatal(err)
	}
	if got := upper.Value(person{Name: "bo"}); got != "HI bo" {
		t.Errorf("Upper on value = %q", got)
	}

	role, err := Compile[string]("Tags.role", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	if got := role.Value(p); got != "admin" {
		t.Errorf("Tags.role = %q", got)
	}
	missing, _ := Compile[string]("Tags.nope", personPtr)
	if _, err := missing.Get(p); !errors.Is(err, ErrNilIntermediate) {
		t.Errorf("missing key err = %v", err)
	}
}

func TestGetThroughInterface(t *testing.T) {
	b, err := Compile[string]("Pet.Kind", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Value(&person{Pet: &pet{Kind: "cat"}}); got != "cat" {
		t.Errorf("Pet.Kind = %q", got)
	}
	if _, err := b.Get(&person{}); !errors.Is(err, ErrNilIntermediate) {
		t.Errorf("nil interface err = %v", err)
	}
	if _, err := b.Get(&person{Pet: 3}); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("wrong dynamic type err = %v", err)
	}
}

func TestConversion(t *testing.T) {
	b, err := Compile[float64]("Address.Zip", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Value(&person{Address: &address{Zip: 42}}); got != 42 {
		t.Errorf("Zip as float = %v", got)
	}
	if _, err := Compile[[]int]("Name", personPtr); !errors.Is(err, ErrNotConvertible) {
		t.Errorf("string -> []int err = %v", err)
	}
}

func TestSetter(t *testing.T) {
	b, err := Compile[string]("Address.City", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	if b.ReadOnly() {
		t.Fatal("pointer path should be writable")
	}
	p := &person{Address: &address{}}
	if err := b.Set(p, "Rome"); err != nil {
		t.Fatal(err)
	}
	if p.Address.City != "Rome" {
		t.Errorf("City = %q", p.Address.City)
	}
	if err := b.Set(&person{}, "x"); !errors.Is(err, ErrNilIntermediate) {
		t.Errorf("set through nil err = %v", err)
	}

	home, err := Compile[int]("Home.Zip", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	if err := home.Set(p, 7); err != nil || p.Home.Zip != 7 {
		t.Errorf("Home.Zip set: %v, %d", err, p.Home.Zip)
	}

	tag, _ := Compile[string]("Tags.role", personPtr)
	p.Tags = map[string]string{}
	if err := tag.Set(p, "dev"); err != nil || p.Tags["role"] != "dev" {
		t.Errorf("map set: %v, %v", err, p.Tags)
	}
}

func TestReadOnlyPaths(t *testing.T) {
	// A value source is not addressable.
	b, err := Compile[string]("Name", personValue)
	if err != nil {
		t.Fatal(err)
	}
	if !b.ReadOnly() {
		t.Error("field of a value source must be read-only")
	}
	// Method results are read-only unless they return pointers.
	b2, err := Compile[string]("CurrentAddress.City", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	if b2.ReadOnly() {
		t.Error("field behind a pointer-returning method should be writable")
	}
}

func TestNoSourceLiteral(t *testing.T) {
	b, err := Compile[float64]("=12.5", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Value(nil); got != 12.5 {
		t.Errorf("literal = %v", got)
	}
	if !b.ReadOnly() {
		t.Error("literal bindings are read-only")
	}
	if _, err := Compile[int]("=abc", nil); !errors.Is(err, ErrNotConvertible) {
		t.Errorf("bad literal err = %v", err)
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile[string]("Name", nil)
	if !errors.Is(err, ErrNoSourceType) {
		t.Errorf("nil source type err = %v", err)
	}
	var uv *uverrors.UVError
	if !errors.As(err, &uv) || uv.Kind != uverrors.KindBinding {
		t.Errorf("expected KindBinding UVError, got %v", err)
	}

	if _, err := Compile[string]("Nope", personPtr); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("unknown member err = %v", err)
	}
	if _, err := Compile[string]("secret", personPtr); !errors.Is(err, ErrUnknownMember) {
		t.Errorf("unexported field err = %v", err)
	}
	if _, err := Compile[string]("a b", personPtr); !errors.Is(err, ErrSyntax) {
		t.Errorf("syntax err = %v", err)
	}
}

func TestWrongSourceType(t *testing.T) {
	b, _ := Compile[string]("Name", personPtr)
	if _, err := b.Get(&viewModel{}); !errors.Is(err, ErrSourceType) {
		t.Errorf("err = %v, want ErrSourceType", err)
	}
}

func TestCacheReuse(t *testing.T) {
	c := NewCache()
	a, err := CompileIn[string](c, "Name", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := CompileIn[string](c, "Name", personPtr)
	if a != b {
		t.Error("identical compile should return the cached binding")
	}
	other, _ := CompileIn[any](c, "Name", personPtr)
	if other == nil || c.Len() != 2 {
		t.Errorf("different value type should be a separate entry, Len = %d", c.Len())
	}
	if _, err := CompileIn[string](c, "Nope", personPtr); err == nil {
		t.Error("expected error")
	}
	if c.Len() != 2 {
		t.Errorf("failed compiles must not be cached, Len = %d", c.Len())
	}
}

func TestComparer(t *testing.T) {
	eqF := Comparer[float64]()
	if !eqF(math.NaN(), math.NaN()) {
		t.Error("NaN should equal NaN")
	}
	if eqF(1, 2) || !eqF(3, 3) {
		t.Error("float compare wrong")
	}

	eqS := Comparer[[]int]()
	if !eqS([]int{1, 2}, []int{1, 2}) || eqS([]int{1}, []int{2}) {
		t.Error("slice compare wrong")
	}

	eqA := Comparer[any]()
	if !eqA([]int{1}, []int{1}) {
		t.Error("interface compare should be deep")
	}

	eqP := Comparer[address]()
	if !eqP(address{City: "a"}, address{City: "a"}) {
		t.Error("struct compare wrong")
	}
}

func TestSetWithInterfaceValue(t *testing.T) {
	b, err := Compile[any]("Address.Zip", personPtr)
	if err != nil {
		t.Fatal(err)
	}
	p := &person{Address: &address{}}
	if err := b.Set(p, 9); err != nil || p.Address.Zip != 9 {
		t.Errorf("set via any: %v, %d", err, p.Address.Zip)
	}
}
