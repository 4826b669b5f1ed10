// Package verifier samples the document after a run to surface gross
// formatting failures.
package verifier

import (
	"log"
	"strings"

	"golang.org/x/text/cases"

	"github.com/f4ah6o/docstyler-go/internal/host"
	"github.com/f4ah6o/docstyler-go/internal/locator"
)

// Document is the part of the host the verifier reads.
type Document interface {
	host.Finder
	host.Selector
	host.Inspector
}

// Method names which check produced a verdict.
type Method string

const (
	MethodNone     Method = ""
	MethodSample   Method = "sample"
	MethodFragment Method = "fragment"
)

// Result is the outcome of one verification.
type Result struct {
	Verified bool                 `json:"verified"`
	Method   Method               `json:"method,omitempty"`
	Matched  string               `json:"matched,omitempty"`
	Styles   []host.ComputedStyle `json:"styles,omitempty"`
}

// Verifier checks effective style, never markup.
type Verifier struct {
	doc    Document
	loc    *locator.Locator
	logger *log.Logger
}

// New creates a Verifier. The locator should use the same options as the run.
func New(doc Document, loc *locator.Locator, logger *log.Logger) *Verifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Verifier{doc: doc, loc: loc, logger: logger}
}

// Verify re-locates one occurrence of phrase from the top and checks that its
// computed style carries every requested flag. When that fails it falls back
// to scanning the text fragments directly.
func (v *Verifier) Verify(phrase string, styles host.StyleSet) Result {
	if res, ok := v.sample(phrase, styles); ok {
		return res
	}
	if res, ok := v.fragments(phrase, styles); ok {
		return res
	}
	return Result{}
}

func (v *Verifier) sample(phrase string, styles host.StyleSet) (Result, bool) {
	v.doc.ClearSelection()
	defer v.doc.ClearSelection()

	occ, found := v.loc.Locate(phrase)
	if !found {
		return Result{}, false
	}
	computed, err := v.doc.ComputedStyles(occ.Range)
	if err != nil {
		v.logger.Printf("Warning: failed to read style of %q: %v", occ.MatchedText, err)
		return Result{}, false
	}
	for _, c := range computed {
		if !c.Satisfies(styles) {
			return Result{}, false
		}
	}
	if len(computed) == 0 {
		return Result{}, false
	}
	return Result{Verified: true, Method: MethodSample, Matched: occ.MatchedText, Styles: computed}, true
}

// fragments bypasses find entirely, in case the run left the search state
// somewhere unexpected.
func (v *Verifier) fragments(phrase string, styles host.StyleSet) (Result, bool) {
	fold := cases.Fold()
	needle := fold.String(phrase)
	for _, f := range v.doc.Fragments() {
		if !strings.Contains(fold.String(f.Text), needle) {
			continue
		}
		if f.Style.Satisfies(styles) {
			return Result{
				Verified: true,
				Method:   MethodFragment,
				Matched:  strings.TrimSpace(f.Text),
				Styles:   []host.ComputedStyle{f.Style},
			}, true
		}
	}
	return Result{}, false
}
