// Package host describes the primitives a live rich-text document exposes to
// the formatting engine: find, selection, inspection and formatting controls.
// The engine only ever talks to a document through these contracts.
package host

import (
	"strconv"
	"strings"
)

// Range addresses a span of the document's flattened text by byte offsets.
// Inline formatting does not change the flattened text, so a Range stays
// meaningful across re-renders caused by formatting.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// Collapsed reports whether the range is empty.
func (r Range) Collapsed() bool { return r.End <= r.Start }

// CollapseToEnd returns an empty range positioned right after r.
func (r Range) CollapseToEnd() Range { return Range{Start: r.End, End: r.End} }

// FindOptions mirrors the browser find primitive flags.
type FindOptions struct {
	MatchCase bool
	Wrap      bool
	WholeWord bool
}

// Style is one formatting toggle.
type Style int

const (
	Bold Style = iota
	Italic
	Underline
)

// AllStyles lists styles in the fixed order they are applied.
var AllStyles = []Style{Bold, Italic, Underline}

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	default:
		return "style(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseStyle resolves a style name such as "bold".
func ParseStyle(name string) (Style, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bold":
		return Bold, true
	case "italic":
		return Italic, true
	case "underline":
		return Underline, true
	}
	return 0, false
}

// StyleSet is the set of requested formatting toggles.
type StyleSet struct {
	Bold      bool `json:"bold" yaml:"bold"`
	Italic    bool `json:"italic" yaml:"italic"`
	Underline bool `json:"underline" yaml:"underline"`
}

// Has reports whether s is requested.
func (ss StyleSet) Has(s Style) bool {
	switch s {
	case Bold:
		return ss.Bold
	case Italic:
		return ss.Italic
	case Underline:
		return ss.Underline
	}
	return false
}

// Any reports whether at least one style is requested.
func (ss StyleSet) Any() bool { return ss.Bold || ss.Italic || ss.Underline }

// Requested returns the requested styles in application order.
func (ss StyleSet) Requested() []Style {
	var out []Style
	for _, s := range AllStyles {
		if ss.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

func (ss StyleSet) String() string {
	var names []string
	for _, s := range ss.Requested() {
		names = append(names, s.String())
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// ComputedStyle is the resolved presentation of a piece of text, using the
// same string forms as CSS computed values.
type ComputedStyle struct {
	FontWeight     string `json:"font_weight"`
	FontStyle      string `json:"font_style"`
	TextDecoration string `json:"text_decoration"`
}

// IsBold reports whether the weight is "bold" or numerically at least 600.
func (c ComputedStyle) IsBold() bool {
	w := strings.TrimSpace(strings.ToLower(c.FontWeight))
	if w == "bold" {
		return true
	}
	n, err := strconv.ParseFloat(w, 64)
	return err == nil && n >= 600
}

// IsItalic reports whether the slant is italic.
func (c ComputedStyle) IsItalic() bool {
	return strings.EqualFold(strings.TrimSpace(c.FontStyle), "italic")
}

// IsUnderline reports whether the decoration includes underline.
func (c ComputedStyle) IsUnderline() bool {
	return strings.Contains(strings.ToLower(c.TextDecoration), "underline")
}

// Has reports whether the computed style carries s.
func (c ComputedStyle) Has(s Style) bool {
	switch s {
	case Bold:
		return c.IsBold()
	case Italic:
		return c.IsItalic()
	case Underline:
		return c.IsUnderline()
	}
	return false
}

// Satisfies reports whether every requested flag in ss is present.
func (c ComputedStyle) Satisfies(ss StyleSet) bool {
	for _, s := range ss.Requested() {
		if !c.Has(s) {
			return false
		}
	}
	return true
}

// AllHave reports whether every style in styles carries s. An empty slice
// never does.
func AllHave(styles []ComputedStyle, s Style) bool {
	if len(styles) == 0 {
		return false
	}
	for _, c := range styles {
		if !c.Has(s) {
			return false
		}
	}
	return true
}

// Container is the text of the block enclosing a position, with the
// position's offset inside it counted in runes.
type Container struct {
	Text   string
	Offset int
}

// Fragment is one text node of the document and its resolved style.
type Fragment struct {
	Text  string        `json:"text"`
	Style ComputedStyle `json:"style"`
}

// KeyEvent is a synthetic keyboard event.
type KeyEvent struct {
	Key   string
	Code  string
	Ctrl  bool
	Shift bool
}
