package style

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ultraviolet-go/upf/pkg/ui"
)

// ErrSelector reports a malformed selector.
var ErrSelector = errors.New("style: invalid selector")

// Combinator joins two compound selectors.
type Combinator uint8

const (
	// Descendant matches any ancestor (whitespace).
	Descendant Combinator = iota
	// Child matches the direct parent (">").
	Child
)

// Compound is a sequence of simple selectors that must all match the same
// element.
type Compound struct {
	// Type is the element type name, or "" for any type ("*").
	Type    string
	Name    string
	Classes []string
	Pseudo  []string
}

// Specificity orders competing rules: ids, then classes and
// pseudo-classes, then types.
type Specificity [3]int

// Less reports whether s sorts before o.
func (s Specificity) Less(o Specificity) bool {
	for i := range s {
		if s[i] != o[i] {
			return s[i] < o[i]
		}
	}
	return false
}

// Selector is a parsed selector. Parts are ordered left to right;
// Combinators[i] joins Parts[i] and Parts[i+1].
type Selector struct {
	Text        string
	Parts       []Compound
	Combinators []Combinator
}

// ParseSelector parses selectors such as "StackPanel > .title",
// "#header TextBlock" or "Border.card:hover".
func ParseSelector(text string) (*Selector, error) {
	s := &Selector{Text: strings.TrimSpace(text)}
	if s.Text == "" {
		return nil, fmt.Errorf("%w: empty", ErrSelector)
	}
	pending := Descendant
	expectPart := true
	for tok := range strings.FieldsSeq(strings.ReplaceAll(s.Text, ">", " > ")) {
		if tok == ">" {
			if expectPart {
				return nil, fmt.Errorf("%w: %q: misplaced '>'", ErrSelector, text)
			}
			pending, expectPart = Child, true
			continue
		}
		c, err := parseCompound(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrSelector, text, err)
		}
		if len(s.Parts) > 0 {
			s.Combinators = append(s.Combinators, pending)
		}
		s.Parts = append(s.Parts, c)
		pending, expectPart = Descendant, false
	}
	if expectPart {
		return nil, fmt.Errorf("%w: %q: dangling combinator", ErrSelector, text)
	}
	return s, nil
}

func parseCompound(tok string) (Compound, error) {
	var c Compound
	rest := tok
	if strings.HasPrefix(rest, "*") {
		rest = rest[1:]
	} else if n := identLen(rest); n > 0 {
		c.Type, rest = rest[:n], rest[n:]
	}
	for rest != "" {
		marker := rest[0]
		n := identLen(rest[1:])
		if n == 0 {
			return c, fmt.Errorf("expected identifier after %q in %q", marker, tok)
		}
		ident := rest[1 : 1+n]
		rest = rest[1+n:]
		switch marker {
		case '.':
			c.Classes = append(c.Classes, ident)
		case '#':
			if c.Name != "" {
				return c, fmt.Errorf("two names in %q", tok)
			}
			c.Name = ident
		case ':':
			c.Pseudo = append(c.Pseudo, strings.ToLower(ident))
		default:
			return c, fmt.Errorf("unexpected %q in %q", marker, tok)
		}
	}
	return c, nil
}

func identLen(s string) int {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return i
		}
	}
	return len(s)
}

// Specificity returns the selector's specificity.
func (s *Selector) Specificity() Specificity {
	var sp Specificity
	for _, c := range s.Parts {
		if c.Name != "" {
			sp[0]++
		}
		sp[1] += len(c.Classes) + len(c.Pseudo)
		if c.Type != "" {
			sp[2]++
		}
	}
	return sp
}

// Matches reports whether e is selected.
func (s *Selector) Matches(e *ui.Element) bool {
	last := len(s.Parts) - 1
	if !s.Parts[last].matches(e) {
		return false
	}
	return s.matchAncestors(e.Parent(), last-1)
}

// matchAncestors matches Parts[:i+1] against the chain starting at a.
func (s *Selector) matchAncestors(a *ui.Element, i int) bool {
	if i < 0 {
		return true
	}
	switch s.Combinators[i] {
	case Child:
		return a != nil && s.Parts[i].matches(a) && s.matchAncestors(a.Parent(), i-1)
	default:
		for ; a != nil; a = a.Parent() {
			if s.Parts[i].matches(a) && s.matchAncestors(a.Parent(), i-1) {
				return true
			}
		}
		return false
	}
}

func (c *Compound) matches(e *ui.Element) bool {
	if c.Type != "" && !e.Type().IsNamed(c.Type) {
		return false
	}
	if c.Name != "" && c.Name != e.Name() {
		return false
	}
	for _, cl := range c.Classes {
		if !e.HasClass(cl) {
			return false
		}
	}
	for _, p := range c.Pseudo {
		if !e.PseudoClass(p) {
			return false
		}
	}
	return true
}

func (s *Selector) String() string { return s.Text }
