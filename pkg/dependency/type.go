package dependency

import "strings"

// Type identifies the owner type of dependency properties. Types form a
// single-inheritance chain through their base.
//
// The search list (the type followed by its bases, nearest first) is built
// once when the type is created and never changes, so property lookup never
// walks live links.
type Type struct {
	name   string
	base   *Type
	search []*Type
}

// NewType creates a type deriving from base. base may be nil for a root
// type.
func NewType(name string, base *Type) *Type {
	t := &Type{name: name, base: base}
	t.search = append([]*Type{t}, base.SearchList()...)
	return t
}

// Name returns the type name.
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Base returns the base type, or nil.
func (t *Type) Base() *Type {
	if t == nil {
		return nil
	}
	return t.base
}

// SearchList returns the type and its bases, nearest first. The slice
// must not be modified.
func (t *Type) SearchList() []*Type {
	if t == nil {
		return nil
	}
	return t.search
}

// IsA reports whether t is u or derives from u.
func (t *Type) IsA(u *Type) bool {
	for _, s := range t.SearchList() {
		if s == u {
			return true
		}
	}
	return false
}

// IsNamed reports whether t or one of its bases has the given name,
// ignoring case.
func (t *Type) IsNamed(name string) bool {
	for _, s := range t.SearchList() {
		if strings.EqualFold(s.name, name) {
			return true
		}
	}
	return false
}

func (t *Type) String() string {
	return t.Name()
}
