package binding

import (
	"fmt"
	"strings"
	"unicode"
)

// NoSourceMarker prefixes an expression whose value is generated from the
// expression text itself instead of being read from a source object.
const NoSourceMarker = "="

// Expression is a parsed binding expression.
type Expression struct {
	// Raw is the expression as written.
	Raw string
	// NoSource reports whether the expression carried the no-source marker.
	NoSource bool
	// Literal is the text after the marker for no-source expressions.
	Literal string
	// Path holds the member names for source expressions.
	Path []string
}

// String returns the expression in canonical form.
func (e Expression) String() string {
	if e.NoSource {
		return NoSourceMarker + e.Literal
	}
	return strings.Join(e.Path, ".")
}

// ParseExpression parses a binding expression. The expression may be
// wrapped in "{{" and "}}". A leading "=" marks a literal with no source;
// anything else must be a dot-separated path of identifiers.
func ParseExpression(raw string) (Expression, error) {
	expr := Expression{Raw: raw}
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") {
		s = strings.TrimSpace(s[2 : len(s)-2])
	}
	if s == "" {
		return expr, fmt.Errorf("%w: empty expression", ErrSyntax)
	}

	if literal, ok := strings.CutPrefix(s, NoSourceMarker); ok {
		expr.NoSource = true
		expr.Literal = strings.TrimSpace(literal)
		return expr, nil
	}

	segments := strings.Split(s, ".")
	for i, seg := range segments {
		seg = strings.TrimSpace(seg)
		if !isIdentifier(seg) {
			return expr, fmt.Errorf("%w: bad segment %d %q in %q", ErrSyntax, i, seg, raw)
		}
		segments[i] = seg
	}
	expr.Path = segments
	return expr, nil
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
