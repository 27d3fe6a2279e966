package text

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Measurer implements ui.TextMeasurer with real font metrics. When a face
// cannot be resolved it reports the failure once per family and falls
// back to ui.EstimateTextMeasurer.
type Measurer struct {
	fonts    *FontManager
	fallback ui.EstimateTextMeasurer

	mu       sync.Mutex
	reported map[string]bool
}

// NewMeasurer creates a measurer over m.
func NewMeasurer(m *FontManager) *Measurer {
	return &Measurer{fonts: m, reported: make(map[string]bool)}
}

// Advance returns the horizontal advance of s, kerning included.
func (m *Measurer) Advance(s string, f ui.Font) float64 {
	if s == "" {
		return 0
	}
	face := m.face(f)
	if face == nil {
		return m.fallback.Advance(s, f)
	}
	return toFloat(font.MeasureString(face, s))
}

// LineHeight returns the recommended distance between baselines.
func (m *Measurer) LineHeight(f ui.Font) float64 {
	face := m.face(f)
	if face == nil {
		return m.fallback.LineHeight(f)
	}
	return toFloat(face.Metrics().Height)
}

// Ascent returns the distance from the top of a line to its baseline.
func (m *Measurer) Ascent(f ui.Font) float64 {
	face := m.face(f)
	if face == nil {
		return f.Size
	}
	return toFloat(face.Metrics().Ascent)
}

func (m *Measurer) face(f ui.Font) font.Face {
	if m.fonts == nil {
		return nil
	}
	face, err := m.fonts.Face(f)
	if err == nil {
		return face
	}
	m.mu.Lock()
	first := !m.reported[f.Family]
	m.reported[f.Family] = true
	m.mu.Unlock()
	if first {
		uverrors.Report(&uverrors.UVError{
			Op:   "text.Measurer",
			Kind: uverrors.KindContent,
			Err:  err,
		})
	}
	return nil
}

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
