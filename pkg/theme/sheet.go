package theme

import (
	"strconv"

	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/style"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// State layer opacities blended over a button's background.
const (
	hoverOverlay   = 0.08
	pressedOverlay = 0.12
)

type ruleSpec struct {
	selector string
	setters  [][2]string
}

// Sheet renders t as a stylesheet named "theme:light" or "theme:dark".
func (t *ThemeData) Sheet() *style.Sheet {
	c := t.ColorScheme
	b := t.ButtonThemeOf()
	tt := t.TextTheme

	specs := []ruleSpec{
		{"TextBlock", [][2]string{{"Foreground", c.OnBackground.String()}}},
		{"Panel.surface", [][2]string{{"Background", c.Background.String()}}},
		{"Border.surface", [][2]string{{"Background", c.Surface.String()}}},
		{"Border.card", [][2]string{
			{"Background", c.SurfaceVariant.String()},
			{"BorderBrush", c.Outline.String()},
			{"BorderThickness", "1"},
			{"Padding", "12"},
		}},
		{".card TextBlock", [][2]string{{"Foreground", c.OnSurfaceVariant.String()}}},
		{"Border.button", [][2]string{
			{"Background", b.BackgroundColor.String()},
			{"Padding", thickness(b.Padding)},
			{"Focusable", "true"},
		}},
		{".button TextBlock", [][2]string{{"Foreground", b.ForegroundColor.String()}}},
		{"Border.button:hover", [][2]string{{"Background", overlay(b.BackgroundColor, b.ForegroundColor, hoverOverlay)}}},
		{"Border.button:pressed", [][2]string{{"Background", overlay(b.BackgroundColor, b.ForegroundColor, pressedOverlay)}}},
		{"Border.button:disabled", [][2]string{{"Background", b.DisabledBackgroundColor.String()}}},
		{".button:disabled TextBlock", [][2]string{{"Foreground", b.DisabledForegroundColor.String()}}},
		{"Border:focus", [][2]string{
			{"BorderBrush", c.Primary.String()},
			{"BorderThickness", "2"},
		}},
		{"TextBlock.headline", [][2]string{{"FontSize", number(tt.Headline)}}},
		{"TextBlock.title", [][2]string{{"FontSize", number(tt.Title)}}},
		{"TextBlock.body", [][2]string{{"FontSize", number(tt.Body)}}},
		{"TextBlock.caption", [][2]string{{"FontSize", number(tt.Caption)}}},
		{"TextBlock.error", [][2]string{{"Foreground", c.Error.String()}}},
	}

	sheet := &style.Sheet{Name: "theme:" + t.Brightness.String()}
	for _, spec := range specs {
		sel, err := style.ParseSelector(spec.selector)
		if err != nil {
			// Selectors above are constant.
			panic(err)
		}
		rule := style.Rule{Selector: sel}
		for _, s := range spec.setters {
			rule.Setters = append(rule.Setters, style.Setter{Property: s[0], Value: s[1]})
		}
		sheet.Rules = append(sheet.Rules, rule)
	}
	return sheet
}

func overlay(base, over ui.Color, amount float64) string {
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*amount + 0.5)
	}
	return ui.Color{R: mix(base.R, over.R), G: mix(base.G, over.G), B: mix(base.B, over.B), A: base.A}.String()
}

func thickness(t layout.Thickness) string {
	return number(t.Left) + " " + number(t.Top) + " " + number(t.Right) + " " + number(t.Bottom)
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
