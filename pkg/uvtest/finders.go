package uvtest

import (
	"fmt"
	"strings"

	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Finder locates elements in a tree.
type Finder interface {
	// Evaluate returns all matching elements under root, depth-first
	// pre-order, root included.
	Evaluate(root *ui.Element) []*ui.Element
	// Description returns a human-readable description for failures.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []*ui.Element
	finder   Finder
}

// Find evaluates f under root's element.
func Find(root ui.Visual, f Finder) FinderResult {
	if root == nil {
		return FinderResult{finder: f}
	}
	return FinderResult{elements: f.Evaluate(root.El()), finder: f}
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *ui.Element {
	if len(r.elements) == 0 {
		panic(fmt.Sprintf("finder found no elements: %s", r.finder.Description()))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *ui.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *ui.Element {
	if index < 0 || index >= len(r.elements) {
		panic(fmt.Sprintf("finder index %d out of range (found %d): %s", index, len(r.elements), r.finder.Description()))
	}
	return r.elements[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*ui.Element { return r.elements }

// Count returns the number of matches.
func (r FinderResult) Count() int { return len(r.elements) }

// Exists reports whether at least one element matched.
func (r FinderResult) Exists() bool { return len(r.elements) > 0 }

type predicateFinder struct {
	desc  string
	match func(*ui.Element) bool
}

func (f *predicateFinder) Evaluate(root *ui.Element) []*ui.Element {
	var out []*ui.Element
	root.Walk(func(e *ui.Element) bool {
		if f.match(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

func (f *predicateFinder) Description() string { return f.desc }

// Where matches elements satisfying fn.
func Where(desc string, fn func(*ui.Element) bool) Finder {
	return &predicateFinder{desc: desc, match: fn}
}

// ByType matches elements whose type is name or derives from it.
func ByType(name string) Finder {
	return Where("type "+name, func(e *ui.Element) bool { return e.Type().IsNamed(name) })
}

// ByName matches elements named name.
func ByName(name string) Finder {
	return Where("name #"+name, func(e *ui.Element) bool { return e.Name() == name })
}

// ByClass matches elements carrying the style class.
func ByClass(class string) Finder {
	return Where("class ."+class, func(e *ui.Element) bool { return e.HasClass(class) })
}

// ByText matches text blocks whose Text equals text.
func ByText(text string) Finder {
	return Where(fmt.Sprintf("text %q", text), func(e *ui.Element) bool {
		tb, ok := e.Self().(*ui.TextBlock)
		return ok && tb.Text() == text
	})
}

// ByTextContaining matches text blocks whose Text contains substring.
func ByTextContaining(substring string) Finder {
	return Where(fmt.Sprintf("text containing %q", substring), func(e *ui.Element) bool {
		tb, ok := e.Self().(*ui.TextBlock)
		return ok && strings.Contains(tb.Text(), substring)
	})
}
