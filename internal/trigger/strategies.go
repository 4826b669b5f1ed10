package trigger

import (
	"context"
	"errors"
	"log"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

// DefaultButtons are the toolbar controls per style.
var DefaultButtons = map[host.Style]string{
	host.Bold:      "#boldButton",
	host.Italic:    "#italicButton",
	host.Underline: "#underlineButton",
}

// DefaultFocusTargets are tried in order before sending a shortcut.
var DefaultFocusTargets = []string{
	".kix-appview-editor",
	`[role="textbox"]`,
	`[contenteditable="true"]`,
	host.EditorTarget,
	"body",
}

var shortcutKeys = map[host.Style]host.KeyEvent{
	host.Bold:      {Key: "b", Code: "KeyB", Ctrl: true},
	host.Italic:    {Key: "i", Code: "KeyI", Ctrl: true},
	host.Underline: {Key: "u", Code: "KeyU", Ctrl: true},
}

// Toolbar clicks the editor's formatting buttons.
type Toolbar struct {
	doc     host.Controls
	logger  *log.Logger
	Buttons map[host.Style]string
}

func (t *Toolbar) Describe() string { return "toolbar" }

func (t *Toolbar) Attempt(_ context.Context, style host.Style) bool {
	sel, ok := t.Buttons[style]
	if !ok {
		return false
	}
	if err := t.doc.Click(sel); err != nil {
		t.logger.Printf("Warning: toolbar %s: %v", style, err)
		return false
	}
	return true
}

// Shortcut focuses the editor and sends the keyboard shortcut.
type Shortcut struct {
	doc     host.Controls
	logger  *log.Logger
	Targets []string
}

func (s *Shortcut) Describe() string { return "shortcut" }

func (s *Shortcut) Attempt(_ context.Context, style host.Style) bool {
	ev, ok := shortcutKeys[style]
	if !ok {
		return false
	}

	// A target can take focus yet sit outside the editor; keep looking.
	focused := false
	for _, target := range s.Targets {
		if err := s.doc.Focus(target); err != nil {
			continue
		}
		focused = true
		err := s.doc.DispatchKey(ev)
		if err == nil {
			return true
		}
		if !errors.Is(err, host.ErrNotFocused) {
			s.logger.Printf("Warning: shortcut %s: %v", style, err)
			return false
		}
	}
	if !focused {
		s.logger.Printf("Warning: shortcut %s: no focus target available", style)
	} else {
		s.logger.Printf("Warning: shortcut %s: no focus target inside the editor", style)
	}
	return false
}

// Exec runs the document's formatting command directly.
type Exec struct {
	doc    host.Controls
	logger *log.Logger
}

func (e *Exec) Describe() string { return "exec" }

func (e *Exec) Attempt(_ context.Context, style host.Style) bool {
	ok, err := e.doc.ExecCommand(style.String())
	if err != nil {
		e.logger.Printf("Warning: exec %s: %v", style, err)
		return false
	}
	return ok
}
