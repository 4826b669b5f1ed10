package document

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

// controlIDs maps well-known toolbar button ids to the command they run.
var controlIDs = map[string]host.Style{
	"boldButton":      host.Bold,
	"italicButton":    host.Italic,
	"underlineButton": host.Underline,
}

var shortcutKeys = map[string]host.Style{
	"b": host.Bold,
	"i": host.Italic,
	"u": host.Underline,
}

// Click activates the control matched by selector. Toolbar controls do not
// take the selection away from the editor.
func (d *Document) Click(selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	found := d.dom.Find(selector).First()
	if found.Length() == 0 {
		return fmt.Errorf("%w: %s", host.ErrControlMissing, selector)
	}
	if v, _ := found.Attr("aria-disabled"); v == "true" {
		return fmt.Errorf("%w: %s", host.ErrControlDisabled, selector)
	}
	if _, disabled := found.Attr("disabled"); disabled {
		return fmt.Errorf("%w: %s", host.ErrControlDisabled, selector)
	}

	style, ok := host.Style(0), false
	if cmd, has := found.Attr("data-command"); has {
		style, ok = host.ParseStyle(cmd)
	} else if id, has := found.Attr("id"); has {
		style, ok = controlIDs[id]
	}
	if !ok {
		return fmt.Errorf("%w: %s runs no formatting command", host.ErrControlMissing, selector)
	}

	return d.enqueue(style)
}

// Focus moves keyboard focus to the element matched by selector.
// host.EditorTarget focuses the editor root.
func (d *Document) Focus(selector string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if selector == host.EditorTarget {
		d.focus = d.editor
		return nil
	}
	found := d.dom.Find(selector).First()
	if found.Length() == 0 {
		return fmt.Errorf("%w: %s", host.ErrControlMissing, selector)
	}
	d.focus = found.Nodes[0]
	return nil
}

// DispatchKey delivers a synthetic key event to the focused element. Only
// Ctrl+B, Ctrl+I and Ctrl+U inside the editor do anything, and nothing at all
// happens when the document ignores synthetic input.
func (d *Document) DispatchKey(ev host.KeyEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.focusInEditor() {
		return host.ErrNotFocused
	}
	if d.opts.IgnoreSyntheticKeys || !ev.Ctrl {
		return nil
	}

	key := strings.ToLower(ev.Key)
	if key == "" {
		key = strings.ToLower(strings.TrimPrefix(ev.Code, "Key"))
	}
	style, ok := shortcutKeys[key]
	if !ok {
		return nil
	}
	return d.enqueue(style)
}

// ExecCommand runs a formatting command against the selection. Like browsers
// it returns false when the editor is not editable.
func (d *Document) ExecCommand(name string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	style, ok := host.ParseStyle(name)
	if !ok || !d.editable() {
		return false, nil
	}
	if err := d.enqueue(style); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Document) focusInEditor() bool {
	for n := d.focus; n != nil; n = n.Parent {
		if n == d.editor {
			return true
		}
	}
	return false
}

func (d *Document) editable() bool {
	for n := d.editor; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if v, ok := attr(n, "contenteditable"); ok {
			return v == "" || strings.EqualFold(v, "true")
		}
	}
	return false
}

// enqueue schedules a toggle over the current selection. Callers hold d.mu.
func (d *Document) enqueue(style host.Style) error {
	if !d.hasSel || d.sel.Collapsed() {
		return host.ErrNoSelection
	}
	rng := d.sel

	if d.opts.RenderDelay <= 0 {
		d.applyToggle(style, rng)
		return nil
	}

	p := &pendingToggle{style: style, rng: rng}
	p.timer = time.AfterFunc(d.opts.RenderDelay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if p.done || d.closed {
			return
		}
		p.done = true
		d.applyToggle(p.style, p.rng)
		d.dropPending(p)
	})
	d.pending = append(d.pending, p)
	return nil
}

func (d *Document) dropPending(p *pendingToggle) {
	for i, q := range d.pending {
		if q == p {
			d.pending = append(d.pending[:i], d.pending[i+1:]...)
			return
		}
	}
}
