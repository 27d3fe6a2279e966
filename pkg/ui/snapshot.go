package ui

import (
	"fmt"

	"github.com/ultraviolet-go/upf/pkg/dependency"
)

// ElementSnapshot is a serializable view of one element for diagnostics.
type ElementSnapshot struct {
	Type     string            `json:"type"`
	Name     string            `json:"name,omitempty"`
	Classes  []string          `json:"classes,omitempty"`
	Depth    int               `json:"depth"`
	X        float64           `json:"x"`
	Y        float64           `json:"y"`
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
	Values   []ValueSnapshot   `json:"values,omitempty"`
	Children []ElementSnapshot `json:"children,omitempty"`
}

// ValueSnapshot records one non-default property value.
type ValueSnapshot struct {
	Property string `json:"property"`
	Value    string `json:"value"`
	Source   string `json:"source"`
}

// Snapshot captures the element tree under the root. It returns nil when
// there is no root.
func (p *Presenter) Snapshot() *ElementSnapshot {
	if p.root == nil {
		return nil
	}
	s := p.root.Snapshot()
	return &s
}

// Snapshot captures e and its subtree.
func (e *Element) Snapshot() ElementSnapshot {
	b := e.AbsoluteBounds()
	s := ElementSnapshot{
		Type:    e.TypeName(),
		Name:    e.name,
		Classes: append([]string(nil), e.classes...),
		Depth:   e.depth,
		X:       b.X,
		Y:       b.Y,
		Width:   b.Width,
		Height:  b.Height,
	}
	e.Object.VisitValues(func(k dependency.Key, v any, src dependency.ValueSource) {
		if src == dependency.SourceDefault {
			return
		}
		s.Values = append(s.Values, ValueSnapshot{
			Property: k.String(),
			Value:    fmt.Sprint(v),
			Source:   src.String(),
		})
	})
	for _, c := range e.children {
		s.Children = append(s.Children, c.Snapshot())
	}
	return s
}
