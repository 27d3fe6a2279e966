package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/ultraviolet-go/upf/pkg/dependency"
	"github.com/ultraviolet-go/upf/pkg/layout"
)

// Owner types. Property lookup by name walks these chains.
var (
	ElementType    = dependency.NewType("UIElement", nil)
	PanelType      = dependency.NewType("Panel", ElementType)
	StackPanelType = dependency.NewType("StackPanel", PanelType)
	CanvasType     = dependency.NewType("Canvas", PanelType)
	BorderType     = dependency.NewType("Border", ElementType)
	TextBlockType  = dependency.NewType("TextBlock", ElementType)
)

// Alignment positions an element inside the slot its parent arranges it in.
type Alignment uint8

const (
	AlignStretch Alignment = iota
	AlignStart
	AlignCenter
	AlignEnd
)

var alignmentNames = map[string]Alignment{
	"stretch": AlignStretch,
	"start":   AlignStart,
	"left":    AlignStart,
	"top":     AlignStart,
	"center":  AlignCenter,
	"end":     AlignEnd,
	"right":   AlignEnd,
	"bottom":  AlignEnd,
}

func (a Alignment) String() string {
	switch a {
	case AlignStart:
		return "Start"
	case AlignCenter:
		return "Center"
	case AlignEnd:
		return "End"
	default:
		return "Stretch"
	}
}

// UnmarshalText accepts Stretch, Start/Left/Top, Center and
// End/Right/Bottom, ignoring case.
func (a *Alignment) UnmarshalText(text []byte) error {
	v, ok := alignmentNames[strings.ToLower(strings.TrimSpace(string(text)))]
	if !ok {
		return fmt.Errorf("ui: unknown alignment %q", text)
	}
	*a = v
	return nil
}

// Visibility controls drawing and layout participation.
type Visibility uint8

const (
	// Visible elements are measured, drawn and hit-tested.
	Visible Visibility = iota
	// Hidden elements take up space but are not drawn or hit-tested.
	Hidden
	// Collapsed elements take up no space.
	Collapsed
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "Hidden"
	case Collapsed:
		return "Collapsed"
	default:
		return "Visible"
	}
}

// UnmarshalText accepts Visible, Hidden and Collapsed, ignoring case.
func (v *Visibility) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "visible":
		*v = Visible
	case "hidden":
		*v = Hidden
	case "collapsed":
		*v = Collapsed
	default:
		return fmt.Errorf("ui: unknown visibility %q", text)
	}
	return nil
}

// Orientation is the stacking direction of a StackPanel.
type Orientation uint8

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "Horizontal"
	}
	return "Vertical"
}

// UnmarshalText accepts Vertical and Horizontal, ignoring case.
func (o *Orientation) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "vertical":
		*o = Vertical
	case "horizontal":
		*o = Horizontal
	default:
		return fmt.Errorf("ui: unknown orientation %q", text)
	}
	return nil
}

func nan() float64 { return math.NaN() }

func inf() float64 { return math.Inf(1) }

const measure = dependency.AffectsMeasure

// Element properties.
var (
	WidthProperty = dependency.MustRegister(ElementType, "Width", dependency.Metadata[float64]{
		Default: nan, Options: measure,
	})
	HeightProperty = dependency.MustRegister(ElementType, "Height", dependency.Metadata[float64]{
		Default: nan, Options: measure,
	})
	MinWidthProperty  = dependency.MustRegister(ElementType, "MinWidth", dependency.Metadata[float64]{Options: measure})
	MinHeightProperty = dependency.MustRegister(ElementType, "MinHeight", dependency.Metadata[float64]{Options: measure})
	MaxWidthProperty  = dependency.MustRegister(ElementType, "MaxWidth", dependency.Metadata[float64]{
		Default: inf, Options: measure,
	})
	MaxHeightProperty = dependency.MustRegister(ElementType, "MaxHeight", dependency.Metadata[float64]{
		Default: inf, Options: measure,
	})
	MarginProperty  = dependency.MustRegister(ElementType, "Margin", dependency.Metadata[layout.Thickness]{Options: measure})
	PaddingProperty = dependency.MustRegister(ElementType, "Padding", dependency.Metadata[layout.Thickness]{Options: measure})

	HorizontalAlignmentProperty = dependency.MustRegister(ElementType, "HorizontalAlignment", dependency.Metadata[Alignment]{
		Options: dependency.AffectsArrange,
	})
	VerticalAlignmentProperty = dependency.MustRegister(ElementType, "VerticalAlignment", dependency.Metadata[Alignment]{
		Options: dependency.AffectsArrange,
	})
	VisibilityProperty = dependency.MustRegister(ElementType, "Visibility", dependency.Metadata[Visibility]{
		Options: measure | dependency.AffectsStyle,
	})
	OpacityProperty = dependency.MustRegister(ElementType, "Opacity", dependency.Metadata[float64]{
		Default: func() float64 { return 1 },
	})
	IsEnabledProperty = dependency.MustRegister(ElementType, "IsEnabled", dependency.Metadata[bool]{
		Default: func() bool { return true },
		Changed: syncDisabled,
		Options: dependency.Inherits | dependency.AffectsStyle,
	})
	IsHitTestVisibleProperty = dependency.MustRegister(ElementType, "IsHitTestVisible", dependency.Metadata[bool]{
		Default: func() bool { return true },
	})
	FocusableProperty = dependency.MustRegister(ElementType, "Focusable", dependency.Metadata[bool]{})

	FontFamilyProperty = dependency.MustRegister(ElementType, "FontFamily", dependency.Metadata[string]{
		Default: func() string { return "default" },
		Options: measure | dependency.Inherits,
	})
	FontSizeProperty = dependency.MustRegister(ElementType, "FontSize", dependency.Metadata[float64]{
		Default: func() float64 { return 16 },
		Options: measure | dependency.Inherits,
	})
	ForegroundProperty = dependency.MustRegister(ElementType, "Foreground", dependency.Metadata[Color]{
		Default: func() Color { return Black },
		Options: dependency.Inherits,
	})
)

// Panel and Border properties.
var (
	BackgroundProperty = dependency.MustRegister(PanelType, "Background", dependency.Metadata[Color]{})

	OrientationProperty = dependency.MustRegister(StackPanelType, "Orientation", dependency.Metadata[Orientation]{
		Options: measure,
	})
	SpacingProperty = dependency.MustRegister(StackPanelType, "Spacing", dependency.Metadata[float64]{Options: measure})

	BorderBackgroundProperty = dependency.MustRegister(BorderType, "Background", dependency.Metadata[Color]{})
	BorderBrushProperty      = dependency.MustRegister(BorderType, "BorderBrush", dependency.Metadata[Color]{})
	BorderThicknessProperty  = dependency.MustRegister(BorderType, "BorderThickness", dependency.Metadata[layout.Thickness]{
		Options: measure,
	})

	TextProperty = dependency.MustRegister(TextBlockType, "Text", dependency.Metadata[string]{
		Options: measure | dependency.BindsTwoWayByDefault,
	})
	TextWrappingProperty = dependency.MustRegister(TextBlockType, "TextWrapping", dependency.Metadata[bool]{
		Options: measure,
	})
)

// Canvas attached properties. They may be set on any element; a change
// re-arranges the element's parent.
var (
	LeftProperty = dependency.MustRegister(CanvasType, "Left", dependency.Metadata[float64]{
		Default: nan, Changed: invalidateParentArrange[float64],
	})
	TopProperty = dependency.MustRegister(CanvasType, "Top", dependency.Metadata[float64]{
		Default: nan, Changed: invalidateParentArrange[float64],
	})
	ZIndexProperty = dependency.MustRegister(CanvasType, "ZIndex", dependency.Metadata[int]{
		Changed: invalidateParentArrange[int],
	})
)

// PseudoDisabled is set on elements whose effective IsEnabled is false.
const PseudoDisabled = "disabled"

func syncDisabled(o *dependency.Object, _, enabled bool) {
	if e, ok := o.Owner().(*Element); ok {
		e.SetPseudoClass(PseudoDisabled, !enabled)
	}
}

func invalidateParentArrange[T any](o *dependency.Object, _, _ T) {
	if e, ok := o.Owner().(*Element); ok && e.parent != nil {
		e.parent.InvalidateArrange()
	}
}
