// Package locator finds the next occurrence of a literal phrase through the
// host's find primitive, tolerating case changes made by earlier stages.
package locator

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

// Document is the part of the host the locator needs.
type Document interface {
	host.Finder
	host.Selector
}

// Occurrence is one located match. Its Range is only trustworthy until the
// document mutates again.
type Occurrence struct {
	MatchedText string     `json:"matched_text"`
	Range       host.Range `json:"range"`
	// Variant is the query form that produced the match.
	Variant string `json:"variant"`
}

// Options tunes the find call.
type Options struct {
	MatchCase bool
	WholeWord bool
}

// Locator wraps a document's find primitive.
type Locator struct {
	doc  Document
	opts Options
}

// New creates a Locator over doc.
func New(doc Document, opts Options) *Locator {
	return &Locator{doc: doc, opts: opts}
}

// Variants returns the query forms in the order they are tried: as given,
// upper-cased, lower-cased. Duplicates are dropped.
func Variants(phrase string) []string {
	candidates := []string{
		phrase,
		cases.Upper(language.Und).String(phrase),
		cases.Lower(language.Und).String(phrase),
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		dup := false
		for _, o := range out {
			if o == c {
				dup = true
				break
			}
		}
		if !dup && c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Locate searches forward from the current caret without wrapping. Every
// variant starts from the same caret and the earliest match wins, ties going
// to the earlier variant. A false result means no variant matched; it is
// never an error.
func (l *Locator) Locate(phrase string) (Occurrence, bool) {
	opts := host.FindOptions{
		MatchCase: l.opts.MatchCase,
		WholeWord: l.opts.WholeWord,
	}
	caret, hasCaret := l.doc.Selection()

	var best Occurrence
	found := false
	for _, v := range Variants(phrase) {
		l.restore(caret, hasCaret)
		if !l.doc.Find(v, opts) {
			continue
		}
		r, ok := l.doc.Selection()
		if !ok || r.Collapsed() {
			continue
		}
		if !found || r.Start < best.Range.Start {
			best = Occurrence{MatchedText: l.doc.TextIn(r), Range: r, Variant: v}
			found = true
		}
	}

	if !found {
		l.restore(caret, hasCaret)
		return Occurrence{}, false
	}
	l.doc.Select(best.Range)
	return best, true
}

func (l *Locator) restore(caret host.Range, ok bool) {
	if ok {
		l.doc.Select(caret)
		return
	}
	l.doc.ClearSelection()
}
