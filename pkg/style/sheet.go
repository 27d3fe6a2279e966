// Package style implements stylesheets: selector matching against the
// element tree and application of setters to the styled value layer.
//
// Stylesheets are written either as CSS-like .uvss text
//
//	StackPanel > .title { font-size: 24; foreground: #336699 }
//	Border.card:hover   { border-brush: red }
//
// or as YAML:
//
//	rules:
//	  - selector: StackPanel > .title
//	    setters:
//	      FontSize: 24
//
// Property names are matched case-insensitively; hyphenated names are
// joined ("font-size" is FontSize) and "Owner.Name" selects an attached
// property.
package style

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	uverrors "github.com/ultraviolet-go/upf/pkg/errors"
	"github.com/ultraviolet-go/upf/pkg/logging"
)

// Setter assigns a value, as text, to a property.
type Setter struct {
	Property  string
	Value     string
	Important bool
}

// Rule pairs a selector with setters.
type Rule struct {
	Selector *Selector
	Setters  []Setter
}

// Sheet is an ordered list of rules. Later rules win over earlier rules of
// equal specificity.
type Sheet struct {
	Name  string
	Rules []Rule
}

// Append adds the rules of o after s's own.
func (s *Sheet) Append(o *Sheet) {
	s.Rules = append(s.Rules, o.Rules...)
}

// Len returns the number of rules.
func (s *Sheet) Len() int { return len(s.Rules) }

// Parse reads .uvss text. Comma-separated selector lists produce one rule
// per selector. At-rules are skipped.
func Parse(name, text string) (*Sheet, error) {
	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, uverrors.New("style.Parse", uverrors.KindStyle, fmt.Errorf("%s: %w", name, err))
	}
	sheet := &Sheet{Name: name}
	for _, r := range parsed.Rules {
		if r.Kind != css.QualifiedRule {
			logging.Logger().Debug("style: skipping at-rule", "sheet", name, "rule", r.Name)
			continue
		}
		setters := make([]Setter, 0, len(r.Declarations))
		for _, d := range r.Declarations {
			setters = append(setters, Setter{
				Property:  NormalizeProperty(d.Property),
				Value:     strings.TrimSpace(d.Value),
				Important: d.Important,
			})
		}
		selectors := r.Selectors
		if len(selectors) == 0 {
			selectors = strings.Split(r.Prelude, ",")
		}
		for _, text := range selectors {
			sel, err := ParseSelector(text)
			if err != nil {
				return nil, uverrors.New("style.Parse", uverrors.KindStyle, fmt.Errorf("%s: %w", name, err))
			}
			sheet.Rules = append(sheet.Rules, Rule{Selector: sel, Setters: setters})
		}
	}
	return sheet, nil
}

type yamlSheet struct {
	Rules []struct {
		Selector  string            `yaml:"selector"`
		Setters   map[string]string `yaml:"setters"`
		Important []string          `yaml:"important"`
	} `yaml:"rules"`
}

// LoadYAML reads a YAML stylesheet. Setter maps carry no order, so
// setters within one rule are applied sorted by property name.
func LoadYAML(name string, data []byte) (*Sheet, error) {
	var doc yamlSheet
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, uverrors.New("style.LoadYAML", uverrors.KindStyle, fmt.Errorf("%s: %w", name, err))
	}
	sheet := &Sheet{Name: name}
	for i, r := range doc.Rules {
		sel, err := ParseSelector(r.Selector)
		if err != nil {
			return nil, uverrors.New("style.LoadYAML", uverrors.KindStyle, fmt.Errorf("%s: rule %d: %w", name, i, err))
		}
		important := make(map[string]bool, len(r.Important))
		for _, p := range r.Important {
			important[strings.ToLower(NormalizeProperty(p))] = true
		}
		rule := Rule{Selector: sel}
		for _, prop := range sortedKeys(r.Setters) {
			norm := NormalizeProperty(prop)
			rule.Setters = append(rule.Setters, Setter{
				Property:  norm,
				Value:     r.Setters[prop],
				Important: important[strings.ToLower(norm)],
			})
		}
		sheet.Rules = append(sheet.Rules, rule)
	}
	return sheet, nil
}

// LoadFile reads a stylesheet, choosing the format from the extension:
// .yaml and .yml are YAML, anything else is .uvss text.
func LoadFile(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, uverrors.New("style.LoadFile", uverrors.KindStyle, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path, data)
	default:
		return Parse(path, string(data))
	}
}

// NormalizeProperty maps CSS-style names to registered property names:
// "font-size" becomes "FontSize" and "canvas.left" keeps its owner
// qualifier. Names without hyphens are returned unchanged.
func NormalizeProperty(name string) string {
	name = strings.TrimSpace(name)
	if !strings.Contains(name, "-") {
		return name
	}
	owner, prop, qualified := strings.Cut(name, ".")
	if !qualified {
		prop, owner = owner, ""
	}
	title := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for seg := range strings.SplitSeq(prop, "-") {
		b.WriteString(title.String(seg))
	}
	if owner != "" {
		return NormalizeProperty(owner) + "." + b.String()
	}
	return b.String()
}
