package document

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

var (
	boldTags      = map[string]bool{"b": true, "strong": true}
	italicTags    = map[string]bool{"i": true, "em": true, "cite": true, "var": true, "dfn": true}
	underlineTags = map[string]bool{"u": true, "ins": true}
	// user agent defaults
	defaultBold = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "th": true}
)

// ContainerAt returns the block text enclosing r.Start and the rune offset of
// r.Start inside it.
func (d *Document) ContainerAt(r host.Range) (host.Container, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ft := d.flatten()
	if !ft.valid(r) {
		return host.Container{}, fmt.Errorf("%w: %d-%d", host.ErrInvalidRange, r.Start, r.End)
	}
	seg, ok := ft.at(r.Start)
	if !ok {
		return host.Container{}, fmt.Errorf("%w: no text at %d", host.ErrInvalidRange, r.Start)
	}

	block := d.blockAncestor(seg.node)
	f := &flattener{}
	for c := block.FirstChild; c != nil; c = c.NextSibling {
		f.walk(c)
	}
	text := f.b.String()
	for _, s := range f.segs {
		if s.node == seg.node {
			off := s.start + (r.Start - seg.start)
			return host.Container{Text: text, Offset: utf8.RuneCountInString(text[:off])}, nil
		}
	}
	return host.Container{}, fmt.Errorf("%w: text node outside its block", host.ErrInvalidRange)
}

// ComputedStyles returns the resolved style of every text node overlapping r.
func (d *Document) ComputedStyles(r host.Range) ([]host.ComputedStyle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	ft := d.flatten()
	if !ft.valid(r) || r.Collapsed() {
		return nil, fmt.Errorf("%w: %d-%d", host.ErrInvalidRange, r.Start, r.End)
	}

	var out []host.ComputedStyle
	for _, s := range ft.overlapping(r) {
		out = append(out, computedStyle(s.node))
	}
	return out, nil
}

// Fragments lists every non-blank text node of the editor with its style.
func (d *Document) Fragments() []host.Fragment {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []host.Fragment
	for _, s := range d.flatten().segs {
		if strings.TrimSpace(s.node.Data) == "" {
			continue
		}
		out = append(out, host.Fragment{Text: s.node.Data, Style: computedStyle(s.node)})
	}
	return out
}

// computedStyle resolves weight and slant from the nearest declaration and
// underline from any ancestor, since text decorations propagate.
func computedStyle(n *html.Node) host.ComputedStyle {
	var weight, slant string
	underline := false

	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		decl := parseStyle(p)

		if weight == "" {
			if v, ok := decl["font-weight"]; ok && v != "inherit" {
				weight = normalizeWeight(v)
			} else if boldTags[p.Data] || defaultBold[p.Data] {
				weight = "700"
			}
		}
		if slant == "" {
			if v, ok := decl["font-style"]; ok && v != "inherit" {
				slant = v
			} else if italicTags[p.Data] {
				slant = "italic"
			}
		}
		if underlineTags[p.Data] || declaresUnderline(decl) {
			underline = true
		}
	}

	cs := host.ComputedStyle{FontWeight: weight, FontStyle: slant, TextDecoration: "none"}
	if cs.FontWeight == "" {
		cs.FontWeight = "400"
	}
	if cs.FontStyle == "" || cs.FontStyle == "initial" || cs.FontStyle == "unset" {
		cs.FontStyle = "normal"
	}
	if underline {
		cs.TextDecoration = "underline"
	}
	return cs
}

func normalizeWeight(v string) string {
	switch v {
	case "bold", "bolder":
		return "700"
	case "normal", "initial", "unset":
		return "400"
	case "lighter":
		return "300"
	}
	return v
}

func declaresUnderline(decl map[string]string) bool {
	return strings.Contains(decl["text-decoration"], "underline") ||
		strings.Contains(decl["text-decoration-line"], "underline")
}

// parseStyle reads the inline style attribute into lower-cased declarations.
func parseStyle(n *html.Node) map[string]string {
	raw, ok := attr(n, "style")
	if !ok || raw == "" {
		return nil
	}
	decl := make(map[string]string)
	for _, part := range strings.Split(raw, ";") {
		k, v, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important")))
		if k != "" {
			decl[k] = v
		}
	}
	return decl
}

// formatStyle writes declarations back in a stable order.
func formatStyle(n *html.Node, decl map[string]string) {
	raw, _ := attr(n, "style")
	var parts []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ";") {
		k, _, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if v, ok := decl[k]; ok && !seen[k] {
			parts = append(parts, k+": "+v)
			seen[k] = true
		}
	}
	for k, v := range decl {
		if !seen[k] {
			parts = append(parts, k+": "+v)
		}
	}
	if len(parts) == 0 {
		removeAttr(n, "style")
		return
	}
	setAttr(n, "style", strings.Join(parts, "; "))
}
