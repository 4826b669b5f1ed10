package host

// Finder is the host's literal-text search. On success it moves the ambient
// selection onto the match.
type Finder interface {
	Find(text string, opts FindOptions) bool
}

// Selector manipulates the ambient selection.
type Selector interface {
	Selection() (Range, bool)
	Select(r Range)
	ClearSelection()
	CollapseSelection(toEnd bool)
	TextIn(r Range) string
}

// Inspector reads resolved presentation and structure without mutating.
type Inspector interface {
	ContainerAt(r Range) (Container, error)
	ComputedStyles(r Range) ([]ComputedStyle, error)
	Fragments() []Fragment
}

// EditorTarget is a Focus selector naming the editor root itself, whatever
// element that turns out to be.
const EditorTarget = ":editor"

// Controls are the indirect formatting primitives. Their effect, when there is
// one, lands asynchronously and is never reported back.
type Controls interface {
	Click(selector string) error
	Focus(selector string) error
	DispatchKey(ev KeyEvent) error
	ExecCommand(name string) (bool, error)
}

// Document is everything the engine needs from a live document.
type Document interface {
	Finder
	Selector
	Inspector
	Controls
}
