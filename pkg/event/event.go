// Package event provides ordered observer lists.
//
// A List replaces multicast delegates: handlers are called in the order they
// were added, each Add returns a Handle for removal, and handlers may be
// added or removed while the list is emitting. Changes made during Emit take
// effect from the next Emit.
package event

// Handle identifies a handler registered on a List.
type Handle uint64

type entry[T any] struct {
	handle Handle
	fn     func(T)
}

// List is an ordered list of handlers receiving values of type T.
// The zero value is ready to use. A List is not safe for concurrent use.
type List[T any] struct {
	entries []entry[T]
	next    Handle
}

// Add appends fn and returns a handle for Remove. A nil fn is ignored and
// yields the zero Handle.
func (l *List[T]) Add(fn func(T)) Handle {
	if fn == nil {
		return 0
	}
	l.next++
	// Copy on write so an in-flight Emit keeps iterating its snapshot.
	entries := make([]entry[T], len(l.entries), len(l.entries)+1)
	copy(entries, l.entries)
	l.entries = append(entries, entry[T]{handle: l.next, fn: fn})
	return l.next
}

// Remove unregisters the handler for h. Reports whether it was present.
func (l *List[T]) Remove(h Handle) bool {
	for i, e := range l.entries {
		if e.handle != h {
			continue
		}
		entries := make([]entry[T], 0, len(l.entries)-1)
		entries = append(entries, l.entries[:i]...)
		l.entries = append(entries, l.entries[i+1:]...)
		return true
	}
	return false
}

// Emit calls every handler with v in registration order.
func (l *List[T]) Emit(v T) {
	for _, e := range l.entries {
		e.fn(v)
	}
}

// Len returns the number of registered handlers.
func (l *List[T]) Len() int {
	return len(l.entries)
}

// Clear removes every handler.
func (l *List[T]) Clear() {
	l.entries = nil
}
