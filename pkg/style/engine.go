package style

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/ultraviolet-go/upf/pkg/dependency"
	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/logging"
	"github.com/ultraviolet-go/upf/pkg/ui"
)

// Match is one setter selected for an element, in application order.
type Match struct {
	Setter
	Selector    *Selector
	Specificity Specificity
	order       int
}

// Engine applies a set of sheets to elements. It implements ui.Styler.
// An Engine is used from the presenter's goroutine only.
type Engine struct {
	sheets []*Sheet
	keys   map[keyCacheKey]dependency.Key

	// Registry resolves property names. Nil means dependency.Default.
	Registry *dependency.Registry
}

type keyCacheKey struct {
	owner *dependency.Type
	name  string
}

// NewEngine creates an engine applying sheets in order.
func NewEngine(sheets ...*Sheet) *Engine {
	return &Engine{sheets: sheets}
}

// Add appends a sheet. Its rules win over earlier sheets at equal
// specificity.
func (g *Engine) Add(s *Sheet) {
	g.sheets = append(g.sheets, s)
}

// Sheets returns the installed sheets.
func (g *Engine) Sheets() []*Sheet { return g.sheets }

// Rules returns the total rule count.
func (g *Engine) Rules() int {
	n := 0
	for _, s := range g.sheets {
		n += s.Len()
	}
	return n
}

// Match returns the setters selected for e in application order: lower
// specificity first, source order breaking ties, important setters last.
// A property appearing more than once resolves to the last entry.
func (g *Engine) Match(e *ui.Element) []Match {
	var out []Match
	order := 0
	for _, s := range g.sheets {
		for i := range s.Rules {
			r := &s.Rules[i]
			order++
			if !r.Selector.Matches(e) {
				continue
			}
			sp := r.Selector.Specificity()
			for _, st := range r.Setters {
				out = append(out, Match{Setter: st, Selector: r.Selector, Specificity: sp, order: order})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Important != b.Important {
			return !a.Important
		}
		if a.Specificity != b.Specificity {
			return a.Specificity.Less(b.Specificity)
		}
		return a.order < b.order
	})
	return out
}

// ApplyStyle sets the styled layer of every matched property on e.
// Setters naming an unknown property or holding an unparsable value are
// reported with KindStyle and skipped; ApplyStyle itself never fails.
func (g *Engine) ApplyStyle(e *ui.Element) error {
	matches := g.Match(e)
	if len(matches) == 0 {
		return nil
	}
	type resolved struct {
		key   dependency.Key
		match *Match
	}
	winners := make(map[int]resolved)
	var ids []int
	for i := range matches {
		m := &matches[i]
		k, err := g.resolve(e.Type(), m.Property)
		if err != nil {
			g.report(e, m, err)
			continue
		}
		if _, seen := winners[k.ID()]; !seen {
			ids = append(ids, k.ID())
		}
		winners[k.ID()] = resolved{key: k, match: m}
	}
	slices.Sort(ids)
	for _, id := range ids {
		w := winners[id]
		if err := e.SetStyledAny(w.key, w.match.Value); err != nil {
			g.report(e, w.match, err)
		}
	}
	logging.Logger().Debug("style applied", "element", e.String(), "setters", len(ids))
	return nil
}

func (g *Engine) resolve(t *dependency.Type, name string) (dependency.Key, error) {
	ck := keyCacheKey{owner: t, name: strings.ToLower(name)}
	if k, ok := g.keys[ck]; ok {
		return k, nil
	}
	r := g.Registry
	if r == nil {
		r = dependency.Default
	}
	k, err := r.Find(t, name)
	if err != nil {
		return nil, err
	}
	if g.keys == nil {
		g.keys = make(map[keyCacheKey]dependency.Key)
	}
	g.keys[ck] = k
	return k, nil
}

func (g *Engine) report(e *ui.Element, m *Match, err error) {
	uverrors.Report(&uverrors.UVError{
		Op:       "style.Apply",
		Kind:     uverrors.KindStyle,
		Property: m.Property,
		Err:      fmt.Errorf("%s on %s: %w", m.Selector, e, err),
	})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
