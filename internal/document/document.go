// Package document provides a live rich-text document backed by an HTML tree.
// It plays the part of the host editor: it answers find requests, keeps an
// ambient selection, reports computed styles, and applies formatting toggles
// asynchronously when one of its controls is activated.
package document

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

// DefaultEditorSelectors are tried in order to locate the editable region.
var DefaultEditorSelectors = []string{
	".kix-appview-editor",
	`[role="textbox"]`,
	`[contenteditable="true"]`,
	"main",
	"article",
	"body",
}

// Options configures how a document behaves.
type Options struct {
	// EditorSelectors overrides DefaultEditorSelectors when non-empty.
	EditorSelectors []string
	// RenderDelay is how long a formatting toggle takes to land. Zero applies
	// toggles synchronously.
	RenderDelay time.Duration
	// IgnoreSyntheticKeys makes keyboard shortcuts dispatched by code a no-op,
	// like editors that only honour trusted input events.
	IgnoreSyntheticKeys bool
	// Logger receives diagnostics. Nil means log.Default().
	Logger *log.Logger
}

// Document is a parsed HTML page with an editor region. It is safe for
// concurrent use; pending toggles are applied from timer goroutines.
type Document struct {
	mu     sync.Mutex
	root   *html.Node
	dom    *goquery.Document
	editor *html.Node
	opts   Options
	logger *log.Logger

	sel    host.Range
	hasSel bool
	focus  *html.Node

	pending []*pendingToggle
	closed  bool
	noticeN int
}

type pendingToggle struct {
	style host.Style
	rng   host.Range
	timer *time.Timer
	done  bool
}

// Load reads and parses an HTML document, decoding its declared charset.
func Load(r io.Reader, opts Options) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	root, err := html.Parse(strings.NewReader(decodeHTML(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return newDocument(root, opts)
}

// LoadFile loads the document stored at path.
func LoadFile(path string, opts Options) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return Load(f, opts)
}

// LoadString is a convenience wrapper around Load.
func LoadString(s string, opts Options) (*Document, error) {
	return Load(strings.NewReader(s), opts)
}

func newDocument(root *html.Node, opts Options) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	d := &Document{
		root:   root,
		dom:    goquery.NewDocumentFromNode(root),
		opts:   opts,
		logger: logger,
	}

	selectors := opts.EditorSelectors
	if len(selectors) == 0 {
		selectors = DefaultEditorSelectors
	}
	for _, s := range selectors {
		if found := d.dom.Find(s).First(); found.Length() > 0 {
			d.editor = found.Nodes[0]
			break
		}
	}
	if d.editor == nil {
		return nil, fmt.Errorf("%w: tried %s", host.ErrNoEditor, strings.Join(selectors, ", "))
	}

	return d, nil
}

// Title returns the page title, falling back to the first heading.
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t := strings.TrimSpace(d.dom.Find("title").First().Text()); t != "" {
		return t
	}
	if h := strings.TrimSpace(d.dom.Find("h1").First().Text()); h != "" {
		return h
	}
	return "Untitled"
}

// HTML renders the whole page.
func (d *Document) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

// EditorHTML renders the editor region only.
func (d *Document) EditorHTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return goquery.OuterHtml(d.dom.FindNodes(d.editor))
}

// Text returns the flattened editor text that Range offsets index into.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.flatten().text
}

// Pending reports how many toggles have been accepted but not yet rendered.
func (d *Document) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush applies every pending toggle immediately.
func (d *Document) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.pending {
		if p.done {
			continue
		}
		p.timer.Stop()
		p.done = true
		d.applyToggle(p.style, p.rng)
	}
	d.pending = nil
}

// Close drops pending toggles. Their timers become no-ops.
func (d *Document) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.pending {
		p.timer.Stop()
		p.done = true
	}
	d.pending = nil
	d.closed = true
}

// AppendNotice injects a transient notice into the page body and returns a
// function removing it again. Notices never take part in find or inspection.
func (d *Document) AppendNotice(message string) (remove func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.noticeN++
	id := fmt.Sprintf("notice-%d", d.noticeN)
	body := d.dom.Find("body").First()
	if body.Length() == 0 {
		return func() {}
	}
	body.AppendHtml(fmt.Sprintf(
		`<div %s="%s" style="position: fixed; top: 20px; right: 20px; background: #4285f4; color: white; padding: 12px 16px; border-radius: 4px; z-index: 10000;">%s</div>`,
		noticeAttr, id, html.EscapeString(message)))

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.dom.Find(fmt.Sprintf(`[%s="%s"]`, noticeAttr, id)).Remove()
	}
}

// Notices returns the text of the notices currently shown.
func (d *Document) Notices() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []string
	d.dom.Find("[" + noticeAttr + "]").Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

var _ host.Document = (*Document)(nil)
