package theme

import (
	"testing"

	"github.com/ultraviolet-go/upf/pkg/layout"
	"github.com/ultraviolet-go/upf/pkg/style"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

func TestParseBrightness(t *testing.T) {
	for in, want := range map[string]Brightness{"light": BrightnessLight, " Dark ": BrightnessDark} {
		got, err := ParseBrightness(in)
		if err != nil || got != want {
			t.Errorf("ParseBrightness(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseBrightness("dim"); err == nil {
		t.Error("expected error")
	}
}

func TestCopyWith(t *testing.T) {
	base := DefaultLightTheme()
	colors := LightColorScheme()
	colors.Primary = ui.Color{R: 0, G: 150, B: 136, A: 0xff}
	dark := BrightnessDark
	custom := base.CopyWith(&colors, nil, &dark)
	if custom.ColorScheme.Primary != colors.Primary || custom.Brightness != BrightnessDark {
		t.Errorf("custom = %+v", custom)
	}
	if base.ColorScheme.Primary == colors.Primary || base.Brightness != BrightnessLight {
		t.Error("CopyWith mutated the original")
	}
	if got := custom.ButtonThemeOf().BackgroundColor; got != colors.Primary {
		t.Errorf("derived button background = %v", got)
	}
}

func TestSheetStylesElements(t *testing.T) {
	th := DefaultDarkTheme()
	sheet := th.Sheet()
	if sheet.Name != "theme:dark" || sheet.Len() == 0 {
		t.Fatalf("sheet %q has %d rules", sheet.Name, sheet.Len())
	}

	label := ui.NewTextBlock("OK")
	button := ui.NewBorder(label)
	button.AddClass("button")
	title := ui.NewTextBlock("Title")
	title.AddClass("title")
	stack := ui.NewStackPanel(ui.Vertical)
	_ = stack.AddChild(title)
	_ = stack.AddChild(button)

	p := ui.NewPresenter(layout.Size{Width: 200, Height: 200})
	p.SetStyler(style.NewEngine(sheet))
	_ = p.SetRoot(stack)
	p.Update(0)

	c := th.ColorScheme
	checks := []struct {
		name      string
		got, want any
	}{
		{"title size", ui.Get(title, ui.FontSizeProperty), th.TextTheme.Title},
		{"title color", ui.Get(title, ui.ForegroundProperty), c.OnBackground},
		{"button background", ui.Get(button, ui.BorderBackgroundProperty), c.Primary},
		{"button label", ui.Get(label, ui.ForegroundProperty), c.OnPrimary},
		{"button padding", ui.Get(button, ui.PaddingProperty), layout.Thickness{Left: 24, Top: 14, Right: 24, Bottom: 14}},
		{"button focusable", ui.Get(button, ui.FocusableProperty), true},
	}
	for _, tt := range checks {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	button.SetPseudoClass("hover", true)
	p.Update(0)
	if got := ui.Get(button, ui.BorderBackgroundProperty); got == c.Primary {
		t.Error("hover should change the button background")
	}

	button.SetPseudoClass("hover", false)
	ui.Set(button, ui.IsEnabledProperty, false)
	p.Update(0)
	if !label.PseudoClass(ui.PseudoDisabled) {
		t.Error("disabled should propagate to the label")
	}
	if got := ui.Get(button, ui.BorderBackgroundProperty); got != c.SurfaceVariant {
		t.Errorf("disabled background = %v, want %v", got, c.SurfaceVariant)
	}
	if got := ui.Get(label, ui.ForegroundProperty); got != c.OnSurfaceVariant {
		t.Errorf("disabled label = %v, want %v", got, c.OnSurfaceVariant)
	}
}

func TestOverlay(t *testing.T) {
	black := ui.Color{A: 0xff}
	white := ui.Color{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	if got := overlay(black, white, 0.5); got != "#808080" {
		t.Errorf("overlay = %q", got)
	}
}
