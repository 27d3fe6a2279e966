// Package text measures text for layout with golang.org/x/image fonts.
//
// A FontManager owns parsed OpenType fonts by family name and hands out
// sized faces. The Go fonts are registered as "default", "sans" and
// "mono"; "basic" is the fixed 7x13 bitmap face. Measurer adapts a
// manager to ui.TextMeasurer:
//
//	presenter.SetTextMeasurer(text.NewMeasurer(text.DefaultFontManager()))
package text

import (
	stderrors "errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

const (
	// defaultFontSize is used when no font size is specified.
	defaultFontSize = 16
	// DefaultFamily is the family used for unknown names.
	DefaultFamily = "default"
	// BasicFamily selects the fixed-size bitmap face.
	BasicFamily = "basic"
)

type faceKey struct {
	family string
	size   float64
}

// FontManager registers font families and caches sized faces. It is safe
// for concurrent use.
type FontManager struct {
	mu    sync.RWMutex
	fonts map[string]*opentype.Font
	faces map[faceKey]font.Face
	dpi   float64
}

var (
	defaultFontManager     *FontManager
	defaultFontManagerErr  error
	defaultFontManagerOnce sync.Once
)

// NewFontManager creates a manager with the Go fonts registered.
func NewFontManager() (*FontManager, error) {
	m := &FontManager{
		fonts: make(map[string]*opentype.Font),
		faces: make(map[faceKey]font.Face),
		dpi:   72,
	}
	for _, f := range []struct {
		names []string
		data  []byte
	}{
		{[]string{DefaultFamily, "sans"}, goregular.TTF},
		{[]string{"mono"}, gomono.TTF},
	} {
		for _, name := range f.names {
			if err := m.RegisterFont(name, f.data); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// DefaultFontManagerErr returns the shared manager and any error from
// creating it.
func DefaultFontManagerErr() (*FontManager, error) {
	defaultFontManagerOnce.Do(func() {
		manager, err := NewFontManager()
		if err != nil {
			defaultFontManagerErr = err
			uverrors.Report(&uverrors.UVError{
				Op:   "text.DefaultFontManager",
				Kind: uverrors.KindContent,
				Err:  err,
			})
			return
		}
		defaultFontManager = manager
	})
	return defaultFontManager, defaultFontManagerErr
}

// DefaultFontManager returns the shared manager, or nil if it could not
// be created.
func DefaultFontManager() *FontManager {
	manager, _ := DefaultFontManagerErr()
	return manager
}

// RegisterFont registers a family from TrueType or OpenType data,
// replacing any family with the same name.
func (m *FontManager) RegisterFont(name string, data []byte) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return stderrors.New("text: font name required")
	}
	if name == BasicFamily {
		return fmt.Errorf("text: %q is reserved", name)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("text: parse font %q: %w", name, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fonts[name] = parsed
	for k, face := range m.faces {
		if k.family == name {
			_ = face.Close()
			delete(m.faces, k)
		}
	}
	return nil
}

// Families returns the registered family names.
func (m *FontManager) Families() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.fonts)+1)
	for name := range m.fonts {
		names = append(names, name)
	}
	return append(names, BasicFamily)
}

// Face returns the face for f. Unknown families fall back to the default
// family; a non-positive size uses 16.
func (m *FontManager) Face(f ui.Font) (font.Face, error) {
	family := strings.ToLower(strings.TrimSpace(f.Family))
	if family == BasicFamily {
		return basicfont.Face7x13, nil
	}
	size := f.Size
	if size <= 0 {
		size = defaultFontSize
	}

	m.mu.RLock()
	parsed, ok := m.fonts[family]
	if !ok {
		family = DefaultFamily
		parsed = m.fonts[family]
	}
	key := faceKey{family: family, size: size}
	face := m.faces[key]
	m.mu.RUnlock()
	if face != nil {
		return face, nil
	}
	if parsed == nil {
		return nil, fmt.Errorf("text: no font for family %q", f.Family)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     m.dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("text: face %s %v: %w", family, size, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing := m.faces[key]; existing != nil {
		_ = face.Close()
		return existing, nil
	}
	m.faces[key] = face
	return face, nil
}
