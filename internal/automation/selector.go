package automation

import (
	"fmt"
	"strings"
)

// Strategy names how a Selector resolves to an element.
type Strategy string

const (
	ByCSS         Strategy = "css"
	ByRole        Strategy = "role"
	ByPlaceholder Strategy = "placeholder"
)

// Selector identifies one region of the page under test.
type Selector struct {
	Strategy Strategy
	// Value is the CSS selector, the ARIA role, or the placeholder text.
	Value string
	// Name is the accessible name to match for ByRole.
	Name string
	// Exclude skips candidates that match, or contain an element matching, this CSS selector.
	Exclude string
}

// ParseSelector parses "css:<selector>", "role:<role>:<name>" or "placeholder:<text>".
// Input without a known prefix is treated as CSS.
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selector{}, fmt.Errorf("empty selector")
	}
	prefix, rest, found := strings.Cut(raw, ":")
	if !found {
		return Selector{Strategy: ByCSS, Value: raw}, nil
	}
	switch Strategy(prefix) {
	case ByCSS:
		if rest == "" {
			return Selector{}, fmt.Errorf("selector %q: missing css", raw)
		}
		return Selector{Strategy: ByCSS, Value: rest}, nil
	case ByRole:
		role, name, _ := strings.Cut(rest, ":")
		if role == "" {
			return Selector{}, fmt.Errorf("selector %q: missing role", raw)
		}
		return Selector{Strategy: ByRole, Value: role, Name: name}, nil
	case ByPlaceholder:
		if rest == "" {
			return Selector{}, fmt.Errorf("selector %q: missing placeholder text", raw)
		}
		return Selector{Strategy: ByPlaceholder, Value: rest}, nil
	default:
		// Pseudo-classes such as "a:hover" are CSS too.
		return Selector{Strategy: ByCSS, Value: raw}, nil
	}
}

// WithExclude returns a copy of s that skips elements matching css.
func (s Selector) WithExclude(css string) Selector {
	s.Exclude = css
	return s
}

func (s Selector) String() string {
	if s == (Selector{}) {
		return ""
	}
	var b strings.Builder
	b.WriteString(string(s.Strategy))
	b.WriteByte(':')
	b.WriteString(s.Value)
	if s.Name != "" {
		b.WriteByte(':')
		b.WriteString(s.Name)
	}
	if s.Exclude != "" {
		b.WriteString(" !")
		b.WriteString(s.Exclude)
	}
	return b.String()
}
