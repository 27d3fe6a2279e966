package dependency

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/logging"
)

var (
	// ErrDuplicate reports a second registration of the same (owner, name).
	ErrDuplicate = errors.New("dependency: property already registered")
	// ErrNotFound reports a lookup that matched no property.
	ErrNotFound = errors.New("dependency: property not found")
	// ErrFrozen reports a registration after Freeze.
	ErrFrozen = errors.New("dependency: registry is frozen")
	// ErrInvalid reports a registration with a nil owner or empty name.
	ErrInvalid = errors.New("dependency: invalid registration")
)

var nextID atomic.Int64

type registryKey struct {
	owner *Type
	name  string // lower-cased
}

// Registry maps (owner type, name) to registered properties. Names match
// case-insensitively. Safe for concurrent use; registration normally
// happens at init and lookups afterwards.
type Registry struct {
	mu     sync.RWMutex
	props  map[registryKey]Key
	byID   map[int]Key
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		props: make(map[registryKey]Key),
		byID:  make(map[int]Key),
	}
}

// Default is the process-wide registry used by MustRegister.
var Default = NewRegistry()

// Register adds a property named name owned by owner.
func Register[T any](r *Registry, owner *Type, name string, md Metadata[T]) (*Property[T], error) {
	if owner == nil || name == "" {
		return nil, registrationError(owner, name, ErrInvalid)
	}
	key := registryKey{owner: owner, name: strings.ToLower(name)}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return nil, registrationError(owner, name, ErrFrozen)
	}
	if _, ok := r.props[key]; ok {
		return nil, registrationError(owner, name, ErrDuplicate)
	}
	p := newProperty(int(nextID.Add(1)), owner, name, md)
	r.props[key] = p
	r.byID[p.id] = p
	logging.Logger().Debug("property registered", "property", p.String(), "options", md.Options.String())
	return p, nil
}

// MustRegister registers on Default and panics on failure. Intended for
// package-level property variables.
func MustRegister[T any](owner *Type, name string, md Metadata[T]) *Property[T] {
	p, err := Register(Default, owner, name, md)
	if err != nil {
		panic(err)
	}
	return p
}

func registrationError(owner *Type, name string, err error) error {
	return &uverrors.UVError{
		Op:       "dependency.Register",
		Kind:     uverrors.KindRegistration,
		Property: owner.Name() + "." + name,
		Err:      err,
	}
}

// Freeze rejects further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Lookup finds name on owner or its bases, nearest first.
func (r *Registry) Lookup(owner *Type, name string) (Key, error) {
	lower := strings.ToLower(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range owner.SearchList() {
		if p, ok := r.props[registryKey{owner: t, name: lower}]; ok {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrNotFound, owner.Name(), name)
}

// Find resolves a possibly qualified name ("Owner.Name" or "Name")
// relative to owner. A qualified name matches a property whose owner has
// that name, searched on owner's chain first and then across the registry
// (attached properties).
func (r *Registry) Find(owner *Type, name string) (Key, error) {
	typeName, propName, qualified := strings.Cut(name, ".")
	if !qualified {
		return r.Lookup(owner, name)
	}
	for _, t := range owner.SearchList() {
		if strings.EqualFold(t.Name(), typeName) {
			return r.Lookup(t, propName)
		}
	}
	lower := strings.ToLower(propName)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, p := range r.props {
		if k.name == lower && strings.EqualFold(k.owner.Name(), typeName) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// ByID returns the property with the given ID.
func (r *Registry) ByID(id int) (Key, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// Properties returns every property declared on owner or its bases,
// ordered by ID.
func (r *Registry) Properties(owner *Type) []Key {
	r.mu.RLock()
	var out []Key
	for k, p := range r.props {
		if owner.IsA(k.owner) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of registered properties.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.props)
}
