package document

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

const noticeAttr = "data-docstyler-notice"

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "caption": true, "dd": true, "div": true, "dl": true,
	"dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "tbody": true,
	"td": true, "tfoot": true, "th": true, "thead": true, "tr": true,
	"ul": true,
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"head": true, "iframe": true,
}

// segment maps one text node onto the flattened text.
type segment struct {
	node       *html.Node
	start, end int
}

// flatText is the editor's visible text with virtual "\n" separators at
// block boundaries.
type flatText struct {
	text string
	segs []segment
}

type flattener struct {
	b       strings.Builder
	segs    []segment
	lastSep bool
}

func (f *flattener) sep() {
	if f.b.Len() > 0 && !f.lastSep {
		f.b.WriteByte('\n')
		f.lastSep = true
	}
}

func (f *flattener) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return
		}
		start := f.b.Len()
		f.b.WriteString(n.Data)
		f.segs = append(f.segs, segment{node: n, start: start, end: f.b.Len()})
		f.lastSep = false
	case html.ElementNode:
		if skipTags[n.Data] || hasAttr(n, noticeAttr) {
			return
		}
		if n.Data == "br" {
			f.sep()
			return
		}
		block := blockTags[n.Data]
		if block {
			f.sep()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f.walk(c)
		}
		if block {
			f.sep()
		}
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f.walk(c)
		}
	}
}

// flatten walks the editor region. Callers hold d.mu.
func (d *Document) flatten() *flatText {
	f := &flattener{}
	for c := d.editor.FirstChild; c != nil; c = c.NextSibling {
		f.walk(c)
	}
	return &flatText{text: f.b.String(), segs: f.segs}
}

func (ft *flatText) valid(r host.Range) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End <= len(ft.text)
}

// overlapping returns the segments intersecting r.
func (ft *flatText) overlapping(r host.Range) []segment {
	var out []segment
	for _, s := range ft.segs {
		if s.end <= r.Start || s.start >= r.End {
			continue
		}
		out = append(out, s)
	}
	return out
}

// covered reports whether every byte of [start, end) belongs to a text node,
// so the span crosses no separator.
func (ft *flatText) covered(start, end int) bool {
	pos := start
	for _, s := range ft.segs {
		if s.end <= pos {
			continue
		}
		if s.start > pos {
			return false
		}
		pos = s.end
		if pos >= end {
			return true
		}
	}
	return pos >= end
}

// at returns the segment holding offset, preferring the one that starts there.
func (ft *flatText) at(offset int) (segment, bool) {
	for _, s := range ft.segs {
		if offset >= s.start && offset < s.end {
			return s, true
		}
	}
	for _, s := range ft.segs {
		if offset == s.end {
			return s, true
		}
	}
	return segment{}, false
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}

// blockAncestor returns the nearest block element above n, never climbing
// past the editor root.
func (d *Document) blockAncestor(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == d.editor {
			return p
		}
		if p.Type == html.ElementNode && blockTags[p.Data] {
			return p
		}
	}
	return d.editor
}
