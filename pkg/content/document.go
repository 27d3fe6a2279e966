package content

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/ultraviolet-go/upf/pkg/dependency"
	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/style"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Document describes an element tree. It is the YAML layout format:
//
//	type: StackPanel
//	name: main
//	properties:
//	  orientation: horizontal
//	  spacing: 4
//	children:
//	  - type: TextBlock
//	    classes: [title]
//	    bindings:
//	      text: Player.Name
type Document struct {
	Type    string   `yaml:"type"`
	Name    string   `yaml:"name,omitempty"`
	Classes []string `yaml:"classes,omitempty"`
	// Properties are local values as text, keyed by property name in
	// PascalCase or kebab-case. "Owner.Name" selects attached properties.
	Properties map[string]string `yaml:"properties,omitempty"`
	// Bindings map property names to binding expressions evaluated
	// against the data context passed to Build.
	Bindings map[string]string `yaml:"bindings,omitempty"`
	Children []Document        `yaml:"children,omitempty"`
}

// Factory creates an element.
type Factory func() ui.Visual

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{
		"uielement":  func() ui.Visual { return ui.NewElement() },
		"panel":      func() ui.Visual { return ui.NewPanel() },
		"stackpanel": func() ui.Visual { return ui.NewStackPanel(ui.Vertical) },
		"canvas":     func() ui.Visual { return ui.NewCanvas() },
		"border":     func() ui.Visual { return ui.NewBorder(nil) },
		"textblock":  func() ui.Visual { return ui.NewTextBlock("") },
	}
)

// RegisterType makes a custom element type available to Build. Names
// are matched without case.
func RegisterType(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[strings.ToLower(name)] = f
}

// ErrUnknownType reports a document naming an unregistered element type.
var ErrUnknownType = errors.New("content: unknown element type")

// Build creates the element tree described by doc. data becomes the
// root's data context and the source type of every binding.
//
// Unknown element types fail the build. Properties and bindings that
// cannot be applied are skipped; the tree is still returned and err joins
// their failures.
func Build(doc *Document, data any) (ui.Visual, error) {
	b := builder{registry: dependency.Default}
	if data != nil {
		b.sourceType = reflect.TypeOf(data)
	}
	root, err := b.build(doc, "")
	if err != nil {
		return nil, err
	}
	if data != nil {
		root.El().SetDataContext(data)
	}
	return root, errors.Join(b.errs...)
}

// LoadTree loads the Document id from l and builds it.
func LoadTree(l Loader, id string, data any) (ui.Visual, error) {
	doc, err := TryLoad[Document](l, id)
	if err != nil {
		return nil, err
	}
	return Build(&doc, data)
}

type builder struct {
	registry   *dependency.Registry
	sourceType reflect.Type
	errs       []error
}

func (b *builder) build(doc *Document, path string) (ui.Visual, error) {
	factoriesMu.RLock()
	f := factories[strings.ToLower(doc.Type)]
	factoriesMu.RUnlock()
	path += "/" + doc.Type
	if f == nil {
		return nil, fmt.Errorf("%w %q at %s", ErrUnknownType, doc.Type, path)
	}

	v := f()
	e := v.El()
	if doc.Name != "" {
		e.SetName(doc.Name)
	}
	e.AddClass(doc.Classes...)

	for _, name := range slices.Sorted(maps.Keys(doc.Properties)) {
		k, err := b.key(e, name)
		if err == nil {
			err = e.SetLocalAny(k, doc.Properties[name])
		}
		b.fail(path, name, err)
	}
	for _, name := range slices.Sorted(maps.Keys(doc.Bindings)) {
		k, err := b.key(e, name)
		if err == nil {
			if b.sourceType == nil {
				err = errors.New("binding without a data context")
			} else {
				err = e.BindAny(k, doc.Bindings[name], b.sourceType, dependency.BindDefault)
			}
		}
		b.fail(path, name, err)
	}

	for i := range doc.Children {
		child, err := b.build(&doc.Children[i], path)
		if err != nil {
			return nil, err
		}
		if err := e.AddChild(child); err != nil {
			return nil, fmt.Errorf("content: %s: %w", path, err)
		}
	}
	return v, nil
}

func (b *builder) key(e *ui.Element, name string) (dependency.Key, error) {
	return b.registry.Find(e.Type(), style.NormalizeProperty(name))
}

func (b *builder) fail(path, property string, err error) {
	if err == nil {
		return
	}
	b.errs = append(b.errs, &uverrors.UVError{
		Op:       "content.Build",
		Kind:     uverrors.KindContent,
		Property: property,
		Err:      fmt.Errorf("%s: %w", path, err),
	})
}
