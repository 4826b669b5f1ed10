package document

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

// Find searches forward from the end of the current selection (or from the
// top when nothing is selected). On a match the selection moves onto it.
func (d *Document) Find(text string, opts host.FindOptions) bool {
	if text == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ft := d.flatten()
	from := 0
	if d.hasSel && d.sel.End <= len(ft.text) {
		from = d.sel.End
	}

	start, n := ft.search(text, from, len(ft.text), opts)
	if start < 0 && opts.Wrap && from > 0 {
		start, n = ft.search(text, 0, from, opts)
	}
	if start < 0 {
		return false
	}

	d.sel = host.Range{Start: start, End: start + n}
	d.hasSel = true
	return true
}

// search returns the first match starting in [from, until) and its length.
// A match never spans a block separator.
func (ft *flatText) search(pattern string, from, until int, opts host.FindOptions) (int, int) {
	s := ft.text
	for i := from; i < until && i < len(s); {
		if n, ok := matchAt(s[i:], pattern, !opts.MatchCase); ok && ft.covered(i, i+n) {
			if !opts.WholeWord || isWordBoundary(s, i, i+n) {
				return i, n
			}
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return -1, 0
}

// matchAt reports whether s starts with pattern and how many bytes of s the
// match consumed. Folded matching compares rune by rune so that offsets stay
// anchored in s even when case forms differ in width.
func matchAt(s, pattern string, fold bool) (int, bool) {
	i := 0
	for _, pr := range pattern {
		if i >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[i:])
		if sr != pr && !(fold && strings.EqualFold(string(sr), string(pr))) {
			return 0, false
		}
		i += size
	}
	return i, true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isWordBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

// Selection returns the ambient selection.
func (d *Document) Selection() (host.Range, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sel, d.hasSel
}

// Select replaces the ambient selection. Ranges outside the text are clamped.
func (d *Document) Select(r host.Range) {
	d.mu.Lock()
	defer d.mu.Unlock()

	size := len(d.flatten().text)
	r.Start = clamp(r.Start, 0, size)
	r.End = clamp(r.End, r.Start, size)
	d.sel = r
	d.hasSel = true
}

// ClearSelection removes the selection entirely; the next Find starts at
// the top of the document.
func (d *Document) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sel = host.Range{}
	d.hasSel = false
}

// CollapseSelection shrinks the selection to its start or end, keeping the
// caret position for the next Find.
func (d *Document) CollapseSelection(toEnd bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.hasSel {
		return
	}
	if toEnd {
		d.sel = d.sel.CollapseToEnd()
	} else {
		d.sel = host.Range{Start: d.sel.Start, End: d.sel.Start}
	}
}

// TextIn returns the flattened text covered by r, or "" if r is out of range.
func (d *Document) TextIn(r host.Range) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ft := d.flatten()
	if !ft.valid(r) {
		return ""
	}
	return ft.text[r.Start:r.End]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
