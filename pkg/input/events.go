package input

import (
	"github.com/ultraviolet-go/upf/pkg/event"
	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Routed carries routing state shared by every bubbling event.
type Routed struct {
	// Source is the element the event was raised on.
	Source *ui.Element
	// Current is the element whose handlers are running.
	Current *ui.Element
	// Handled stops bubbling once set.
	Handled bool
}

func (r *Routed) routed() *Routed { return r }

type routedEvent interface {
	routed() *Routed
}

// KeyEvent is raised on the focused element for key presses and
// releases.
type KeyEvent struct {
	Routed
	Key    Key
	Mods   Modifiers
	Repeat bool
}

// TextEvent is raised on the focused element for committed text.
type TextEvent struct {
	Routed
	Text string
}

// MouseEvent is raised on the element under the pointer, or on the
// capturing element.
type MouseEvent struct {
	Routed
	// Position is relative to the root.
	Position layout.Point
	Button   MouseButton
	Mods     Modifiers
	// WheelX and WheelY are set for wheel events.
	WheelX, WheelY float64
}

// FocusEvent is raised on elements gaining or losing focus. It does not
// bubble.
type FocusEvent struct {
	Old, New *ui.Element
}

// Handlers holds the per-element handler lists. Handlers run while the
// event bubbles from the source to the root.
type Handlers struct {
	KeyDown    event.List[*KeyEvent]
	KeyUp      event.List[*KeyEvent]
	Text       event.List[*TextEvent]
	MouseDown  event.List[*MouseEvent]
	MouseUp    event.List[*MouseEvent]
	MouseMove  event.List[*MouseEvent]
	MouseWheel event.List[*MouseEvent]
	MouseEnter event.List[*MouseEvent]
	MouseLeave event.List[*MouseEvent]
	GotFocus   event.List[FocusEvent]
	LostFocus  event.List[FocusEvent]
}
