// Package theme generates a base stylesheet from a color scheme.
//
// A theme sheet is ordinary style rules, so application stylesheets
// added after it override any of its setters:
//
//	engine := style.NewEngine(theme.DefaultDarkTheme().Sheet())
//	engine.Add(appSheet)
//
// Elements opt in through classes: "surface", "card" and "button" on
// borders and panels, and "headline", "title", "body" and "caption" on
// text blocks.
package theme

import (
	"fmt"
	"strings"

	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Brightness indicates if a theme is light or dark.
type Brightness int

const (
	BrightnessLight Brightness = iota
	BrightnessDark
)

func (b Brightness) String() string {
	if b == BrightnessDark {
		return "dark"
	}
	return "light"
}

// ParseBrightness accepts "light" and "dark", ignoring case.
func ParseBrightness(s string) (Brightness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return BrightnessLight, nil
	case "dark":
		return BrightnessDark, nil
	}
	return 0, fmt.Errorf("theme: unknown brightness %q", s)
}

// ColorScheme is the palette a theme derives its rules from.
type ColorScheme struct {
	Primary          ui.Color
	OnPrimary        ui.Color
	Background       ui.Color
	OnBackground     ui.Color
	Surface          ui.Color
	OnSurface        ui.Color
	SurfaceVariant   ui.Color
	OnSurfaceVariant ui.Color
	Outline          ui.Color
	Error            ui.Color
}

func rgb(hex uint32) ui.Color {
	return ui.Color{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

// LightColorScheme returns the default light palette.
func LightColorScheme() ColorScheme {
	return ColorScheme{
		Primary:          rgb(0x6750a4),
		OnPrimary:        rgb(0xffffff),
		Background:       rgb(0xfef7ff),
		OnBackground:     rgb(0x1d1b20),
		Surface:          rgb(0xfef7ff),
		OnSurface:        rgb(0x1d1b20),
		SurfaceVariant:   rgb(0xe7e0ec),
		OnSurfaceVariant: rgb(0x49454f),
		Outline:          rgb(0x79747e),
		Error:            rgb(0xb3261e),
	}
}

// DarkColorScheme returns the default dark palette.
func DarkColorScheme() ColorScheme {
	return ColorScheme{
		Primary:          rgb(0xd0bcff),
		OnPrimary:        rgb(0x381e72),
		Background:       rgb(0x141218),
		OnBackground:     rgb(0xe6e0e9),
		Surface:          rgb(0x141218),
		OnSurface:        rgb(0xe6e0e9),
		SurfaceVariant:   rgb(0x49454f),
		OnSurfaceVariant: rgb(0xcac4d0),
		Outline:          rgb(0x938f99),
		Error:            rgb(0xf2b8b5),
	}
}

// TextTheme holds font sizes for the text classes.
type TextTheme struct {
	Headline float64
	Title    float64
	Body     float64
	Caption  float64
}

// DefaultTextTheme returns the default type scale.
func DefaultTextTheme() TextTheme {
	return TextTheme{Headline: 32, Title: 22, Body: 16, Caption: 12}
}

// ButtonThemeData styles borders with the "button" class.
type ButtonThemeData struct {
	BackgroundColor         ui.Color
	ForegroundColor         ui.Color
	DisabledBackgroundColor ui.Color
	DisabledForegroundColor ui.Color
	Padding                 layout.Thickness
}

// DefaultButtonTheme derives button colors from colors.
func DefaultButtonTheme(colors ColorScheme) ButtonThemeData {
	return ButtonThemeData{
		BackgroundColor:         colors.Primary,
		ForegroundColor:         colors.OnPrimary,
		DisabledBackgroundColor: colors.SurfaceVariant,
		DisabledForegroundColor: colors.OnSurfaceVariant,
		Padding:                 layout.Thickness{Left: 24, Top: 14, Right: 24, Bottom: 14},
	}
}

// ThemeData is a complete theme.
type ThemeData struct {
	ColorScheme ColorScheme
	TextTheme   TextTheme
	Brightness  Brightness
	// ButtonTheme is derived from ColorScheme when nil.
	ButtonTheme *ButtonThemeData
}

// DefaultLightTheme returns the default light theme.
func DefaultLightTheme() *ThemeData {
	return &ThemeData{
		ColorScheme: LightColorScheme(),
		TextTheme:   DefaultTextTheme(),
		Brightness:  BrightnessLight,
	}
}

// DefaultDarkTheme returns the default dark theme.
func DefaultDarkTheme() *ThemeData {
	return &ThemeData{
		ColorScheme: DarkColorScheme(),
		TextTheme:   DefaultTextTheme(),
		Brightness:  BrightnessDark,
	}
}

// ForBrightness returns the default theme for b.
func ForBrightness(b Brightness) *ThemeData {
	if b == BrightnessDark {
		return DefaultDarkTheme()
	}
	return DefaultLightTheme()
}

// CopyWith returns a new ThemeData with the non-nil arguments replacing
// the corresponding fields.
func (t *ThemeData) CopyWith(colorScheme *ColorScheme, textTheme *TextTheme, brightness *Brightness) *ThemeData {
	result := *t
	if colorScheme != nil {
		result.ColorScheme = *colorScheme
	}
	if textTheme != nil {
		result.TextTheme = *textTheme
	}
	if brightness != nil {
		result.Brightness = *brightness
	}
	return &result
}

// ButtonThemeOf returns the button theme, deriving from ColorScheme if not set.
func (t *ThemeData) ButtonThemeOf() ButtonThemeData {
	if t.ButtonTheme != nil {
		return *t.ButtonTheme
	}
	return DefaultButtonTheme(t.ColorScheme)
}
