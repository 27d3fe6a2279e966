package ui

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ultraviolet-go/upf/pkg/layout"
)

// Font selects a face for measuring and drawing text.
type Font struct {
	Family string
	Size   float64
}

// TextMeasurer supplies the font metrics used for text layout. Package
// text provides implementations backed by real font faces.
type TextMeasurer interface {
	// Advance returns the width of s on a single line.
	Advance(s string, f Font) float64
	// LineHeight returns the distance between baselines.
	LineHeight(f Font) float64
}

// EstimateTextMeasurer approximates metrics from the font size alone.
// Every rune advances 0.55 em and lines are 1.25 em apart.
type EstimateTextMeasurer struct{}

// Advance implements TextMeasurer.
func (EstimateTextMeasurer) Advance(s string, f Font) float64 {
	return float64(utf8.RuneCountInString(s)) * f.Size * 0.55
}

// LineHeight implements TextMeasurer.
func (EstimateTextMeasurer) LineHeight(f Font) float64 { return f.Size * 1.25 }

// LayoutText breaks text into lines and returns them with the size of the
// block. Explicit newlines always break. When wrap is set, words are
// moved to a new line once a line would exceed maxWidth; a single word
// wider than maxWidth keeps its own line.
func LayoutText(m TextMeasurer, text string, f Font, maxWidth float64, wrap bool) ([]string, layout.Size) {
	if text == "" {
		return nil, layout.Size{}
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if !wrap || math.IsInf(maxWidth, 1) {
			lines = append(lines, para)
			continue
		}
		lines = append(lines, wrapParagraph(m, para, f, maxWidth)...)
	}
	var size layout.Size
	for _, l := range lines {
		size.Width = math.Max(size.Width, m.Advance(l, f))
	}
	size.Height = float64(len(lines)) * m.LineHeight(f)
	return lines, size
}

func wrapParagraph(m TextMeasurer, para string, f Font, maxWidth float64) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if m.Advance(candidate, f) > maxWidth {
			lines = append(lines, line)
			line = w
			continue
		}
		line = candidate
	}
	return append(lines, line)
}

// TextBlock displays read-only text.
type TextBlock struct {
	Element
	lines []string
}

// NewTextBlock creates a text block showing text.
func NewTextBlock(text string) *TextBlock {
	t := &TextBlock{}
	t.Init(TextBlockType, t)
	if text != "" {
		Set(t, TextProperty, text)
	}
	return t
}

// Text returns the displayed text as of the last digest.
func (t *TextBlock) Text() string { return Get(t, TextProperty) }

// Lines returns the lines produced by the last measure.
func (t *TextBlock) Lines() []string { return t.lines }

// Font returns the inherited font selection.
func (t *TextBlock) Font() Font {
	return Font{Family: Get(t, FontFamilyProperty), Size: Get(t, FontSizeProperty)}
}

func (t *TextBlock) measurer() TextMeasurer {
	if t.presenter != nil && t.presenter.text != nil {
		return t.presenter.text
	}
	return EstimateTextMeasurer{}
}

// MeasureOverride lays the text out within the available width.
func (t *TextBlock) MeasureOverride(available layout.Size) layout.Size {
	padding := Get(t, PaddingProperty)
	inner := available.Deflate(padding)
	var size layout.Size
	t.lines, size = LayoutText(t.measurer(), t.Text(), t.Font(), inner.Width, Get(t, TextWrappingProperty))
	return size.Inflate(padding)
}

// ArrangeOverride accepts the final size.
func (t *TextBlock) ArrangeOverride(final layout.Size) layout.Size { return final }

// Render draws each line.
func (t *TextBlock) Render(dc DrawingContext, opacity float64) {
	if len(t.lines) == 0 {
		return
	}
	f := t.Font()
	fg := Get(t, ForegroundProperty).WithOpacity(opacity)
	origin := t.AbsolutePosition()
	padding := Get(t, PaddingProperty)
	origin.X += padding.Left
	origin.Y += padding.Top
	step := t.measurer().LineHeight(f)
	for i, l := range t.lines {
		dc.DrawText(l, layout.Point{X: origin.X, Y: origin.Y + float64(i)*step}, f, fg)
	}
}
