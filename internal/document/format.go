package document

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

// maxStrip bounds how many carrier elements one removal may peel off.
const maxStrip = 32

var styleTag = map[host.Style]string{
	host.Bold:      "b",
	host.Italic:    "i",
	host.Underline: "u",
}

// applyToggle flips style over r the way execCommand does: when every piece
// of text already has the style it is removed, otherwise it is added to the
// pieces lacking it. Callers hold d.mu.
func (d *Document) applyToggle(style host.Style, r host.Range) {
	nodes := d.splitRange(r)
	if len(nodes) == 0 {
		d.logger.Printf("Warning: toggle %s over %d-%d touched no text", style, r.Start, r.End)
		return
	}

	all := true
	for _, n := range nodes {
		if !computedStyle(n).Has(style) {
			all = false
			break
		}
	}

	for _, n := range nodes {
		switch {
		case all:
			d.removeStyle(n, style)
		case !computedStyle(n).Has(style):
			wrap(n, styleTag[style], nil)
		}
	}
}

// splitRange splits text nodes at the boundaries of r and returns the nodes
// now lying entirely inside it.
func (d *Document) splitRange(r host.Range) []*html.Node {
	ft := d.flatten()
	if !ft.valid(r) || r.Collapsed() {
		return nil
	}

	var out []*html.Node
	for _, s := range ft.overlapping(r) {
		lo := max(r.Start, s.start) - s.start
		hi := min(r.End, s.end) - s.start
		out = append(out, splitText(s.node, lo, hi))
	}
	return out
}

// splitText cuts n so that it holds exactly n.Data[lo:hi], moving the rest
// into new sibling text nodes.
func splitText(n *html.Node, lo, hi int) *html.Node {
	data := n.Data
	if hi < len(data) {
		n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: data[hi:]}, n.NextSibling)
	}
	if lo > 0 {
		n.Parent.InsertBefore(&html.Node{Type: html.TextNode, Data: data[:lo]}, n)
	}
	n.Data = data[lo:hi]
	return n
}

// wrap moves n into a new element inserted where n was.
func wrap(n *html.Node, tag string, attrs []html.Attribute) *html.Node {
	el := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
	parent := n.Parent
	parent.InsertBefore(el, n)
	parent.RemoveChild(n)
	el.AppendChild(n)
	return el
}

// unwrap replaces el with its children.
func unwrap(el *html.Node) {
	parent := el.Parent
	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		el.RemoveChild(c)
		parent.InsertBefore(c, el)
		c = next
	}
	parent.RemoveChild(el)
}

func shallowClone(n *html.Node) *html.Node {
	attrs := make([]html.Attribute, 0, len(n.Attr))
	for _, a := range n.Attr {
		if a.Key == "id" {
			continue
		}
		attrs = append(attrs, a)
	}
	return &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      attrs,
	}
}

// isolate splits every element from n's parent up to top so that top ends up
// containing nothing but the path down to n. Siblings move into clones placed
// before and after.
func isolate(top, n *html.Node) {
	child := n
	for p := n.Parent; p != nil; p = p.Parent {
		if child.PrevSibling != nil {
			left := shallowClone(p)
			for c := p.FirstChild; c != child; {
				next := c.NextSibling
				p.RemoveChild(c)
				left.AppendChild(c)
				c = next
			}
			p.Parent.InsertBefore(left, p)
		}
		if child.NextSibling != nil {
			right := shallowClone(p)
			for c := child.NextSibling; c != nil; {
				next := c.NextSibling
				p.RemoveChild(c)
				right.AppendChild(c)
				c = next
			}
			p.Parent.InsertBefore(right, p.NextSibling)
		}
		if p == top {
			return
		}
		child = p
	}
}

// carries reports whether el itself declares style.
func carries(el *html.Node, style host.Style) bool {
	decl := parseStyle(el)
	switch style {
	case host.Bold:
		if v, ok := decl["font-weight"]; ok {
			return host.ComputedStyle{FontWeight: normalizeWeight(v)}.IsBold()
		}
		return boldTags[el.Data]
	case host.Italic:
		if v, ok := decl["font-style"]; ok {
			return v == "italic"
		}
		return italicTags[el.Data]
	case host.Underline:
		return underlineTags[el.Data] || declaresUnderline(decl)
	}
	return false
}

// nearestCarrier finds the closest inline ancestor of n, below its block,
// that applies style.
func (d *Document) nearestCarrier(n *html.Node, style host.Style) *html.Node {
	block := d.blockAncestor(n)
	for p := n.Parent; p != nil && p != block; p = p.Parent {
		if p.Type == html.ElementNode && carries(p, style) {
			return p
		}
	}
	return nil
}

// removeStyle takes style off the single text node n.
func (d *Document) removeStyle(n *html.Node, style host.Style) {
	for i := 0; i < maxStrip && computedStyle(n).Has(style); i++ {
		carrier := d.nearestCarrier(n, style)
		if carrier == nil {
			break
		}
		isolate(carrier, n)
		strip(carrier, style)
	}

	if !computedStyle(n).Has(style) {
		return
	}
	// The style comes from the block or a user agent default.
	switch style {
	case host.Bold:
		wrap(n, "span", []html.Attribute{{Key: "style", Val: "font-weight: 400"}})
	case host.Italic:
		wrap(n, "span", []html.Attribute{{Key: "style", Val: "font-style: normal"}})
	case host.Underline:
		d.logger.Printf("Warning: underline on %q is inherited from a block and cannot be removed", n.Data)
	}
}

// strip removes style from el, dropping el altogether when nothing else is
// left on it.
func strip(el *html.Node, style host.Style) {
	decl := parseStyle(el)
	if decl != nil {
		switch style {
		case host.Bold:
			delete(decl, "font-weight")
		case host.Italic:
			delete(decl, "font-style")
		case host.Underline:
			delete(decl, "text-decoration")
			delete(decl, "text-decoration-line")
		}
		formatStyle(el, decl)
	}

	tagged := (style == host.Bold && boldTags[el.Data]) ||
		(style == host.Italic && italicTags[el.Data]) ||
		(style == host.Underline && underlineTags[el.Data])
	if tagged {
		el.Data = "span"
		el.DataAtom = atom.Span
	}
	if el.Data == "span" && len(el.Attr) == 0 {
		unwrap(el)
	}
}
