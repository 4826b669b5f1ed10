// Package notify shows transient progress messages to the user.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level is the severity of a notification.
type Level int

const (
	Info Level = iota
	Success
	Warning
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Notifier delivers a message. Delivery is best effort.
type Notifier interface {
	Notify(level Level, message string)
}

// Func adapts a function to Notifier.
type Func func(level Level, message string)

func (f Func) Notify(level Level, message string) { f(level, message) }

// Discard drops every notification.
var Discard Notifier = Func(func(Level, string) {})

var (
	colorInfo    = color.New(color.FgCyan)
	colorSuccess = color.New(color.FgGreen, color.Bold)
	colorWarning = color.New(color.FgYellow)
)

// Terminal prints notifications on a writer, colored when it is a terminal.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal writes to w, or to stderr when w is nil.
func NewTerminal(w io.Writer) *Terminal {
	if w == nil {
		w = os.Stderr
	}
	return &Terminal{w: w}
}

func (t *Terminal) Notify(level Level, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch level {
	case Success:
		colorSuccess.Fprintf(t.w, "✓ %s\n", message)
	case Warning:
		colorWarning.Fprintf(t.w, "! %s\n", message)
	default:
		colorInfo.Fprintf(t.w, "• %s\n", message)
	}
}

// Page is a document that can show a notice and take it down again.
type Page interface {
	AppendNotice(message string) (remove func())
}

// DefaultTimeout is how long a notice stays on the page.
const DefaultTimeout = 3 * time.Second

// Document shows notifications inside the page itself.
type Document struct {
	page    Page
	timeout time.Duration
}

// NewDocument creates a notifier for page. A non-positive timeout keeps
// notices up until the page goes away.
func NewDocument(page Page, timeout time.Duration) *Document {
	return &Document{page: page, timeout: timeout}
}

func (d *Document) Notify(_ Level, message string) {
	remove := d.page.AppendNotice(message)
	if d.timeout > 0 {
		time.AfterFunc(d.timeout, remove)
	}
}

// Multi fans a notification out to every notifier.
type Multi []Notifier

func (m Multi) Notify(level Level, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(level, message)
		}
	}
}
