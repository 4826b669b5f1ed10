// Package report prints run results and occurrence listings for humans, in
// color, or as JSON for scripts.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/f4ah6o/docstyler-go/internal/engine"
	"github.com/f4ah6o/docstyler-go/internal/fingerprint"
	"github.com/f4ah6o/docstyler-go/internal/host"
	"github.com/f4ah6o/docstyler-go/internal/locator"
)

const (
	contextRunes = 30
	// maxScan bounds a listing walk the same way the engine's cap bounds a run.
	maxScan = 10000
)

var (
	// ANSI colors for terminal output
	colorHeader  = color.New(color.FgHiMagenta, color.Bold)
	colorBold    = color.New(color.Bold)
	colorCyan    = color.New(color.FgCyan)
	colorSuccess = color.New(color.FgGreen)
	colorWarning = color.New(color.FgYellow)
)

// Document is what a listing walk reads.
type Document interface {
	host.Finder
	host.Selector
	host.Inspector
}

// Occurrence is one listed match.
type Occurrence struct {
	Index   int        `json:"index"`
	Text    string     `json:"text"`
	Range   host.Range `json:"range"`
	Context string     `json:"context"`
	Styles  []string   `json:"styles"`
	// Duplicate marks a match whose fingerprint an earlier one already
	// holds; a run would skip it.
	Duplicate bool `json:"duplicate,omitempty"`
}

// Occurrences lists the matches of phrase from the top of doc without
// changing anything, fingerprinting them with w the way a run would. limit
// <= 0 lists them all.
func Occurrences(doc Document, phrase string, opts locator.Options, w fingerprint.Windows, limit int) []Occurrence {
	if w == (fingerprint.Windows{}) {
		w = fingerprint.DefaultWindows()
	}

	doc.ClearSelection()
	defer doc.ClearSelection()

	loc := locator.New(doc, opts)
	var ledger fingerprint.Ledger
	var out []Occurrence

	for i := 0; i < maxScan && (limit <= 0 || len(out) < limit); i++ {
		occ, ok := loc.Locate(phrase)
		if !ok {
			break
		}
		doc.Select(occ.Range.CollapseToEnd())

		c, err := doc.ContainerAt(occ.Range)
		if err != nil {
			continue
		}
		fp := fingerprint.FromContainer(c, w)
		dup := ledger.Seen(fp)
		ledger.Record(fp)

		out = append(out, Occurrence{
			Index:     len(out) + 1,
			Text:      occ.MatchedText,
			Range:     occ.Range,
			Context:   markContext(c, occ.MatchedText),
			Styles:    styleNames(doc, occ.Range),
			Duplicate: dup,
		})
	}
	return out
}

// markContext brackets the match inside its block text, trimmed to a window.
func markContext(c host.Container, match string) string {
	runes := []rune(c.Text)
	start := min(c.Offset, len(runes))
	end := min(start+len([]rune(match)), len(runes))

	lo := max(0, start-contextRunes)
	hi := min(len(runes), end+contextRunes)

	var b strings.Builder
	if lo > 0 {
		b.WriteString("…")
	}
	b.WriteString(string(runes[lo:start]))
	b.WriteString("[" + string(runes[start:end]) + "]")
	b.WriteString(string(runes[end:hi]))
	if hi < len(runes) {
		b.WriteString("…")
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func styleNames(doc Document, r host.Range) []string {
	computed, err := doc.ComputedStyles(r)
	if err != nil {
		return nil
	}
	names := []string{}
	partial := false
	for _, s := range host.AllStyles {
		if host.AllHave(computed, s) {
			names = append(names, s.String())
			continue
		}
		for _, c := range computed {
			if c.Has(s) {
				partial = true
			}
		}
	}
	if partial {
		names = append(names, "mixed")
	}
	if len(names) == 0 {
		names = append(names, "plain")
	}
	return names
}

// FormatOccurrences prints a listing in a human-readable format.
func FormatOccurrences(w io.Writer, occs []Occurrence, phrase string) {
	if len(occs) == 0 {
		fmt.Fprintf(w, "No occurrences of '%s' found.\n", phrase)
		return
	}

	colorHeader.Fprintf(w, "\nOccurrences of '%s'\n", phrase)
	fmt.Fprintf(w, "Found %d.\n\n", len(occs))

	for _, o := range occs {
		colorBold.Fprintf(w, "%d. %s", o.Index, o.Text)
		fmt.Fprintf(w, "  (%d-%d, %s)", o.Range.Start, o.Range.End, strings.Join(o.Styles, ", "))
		if o.Duplicate {
			colorWarning.Fprint(w, " duplicate")
		}
		fmt.Fprintln(w)
		colorCyan.Fprintf(w, "   %s\n", o.Context)
	}
	fmt.Fprintln(w)
}

// FormatResult prints a run result in a human-readable format.
func FormatResult(w io.Writer, res engine.RunResult) {
	colorHeader.Fprintf(w, "\nFormatting '%s' as %s\n", res.Phrase, res.Styles)
	colorCyan.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "   Attempted: %d | Formatted: %d | Already styled: %d\n", res.Attempted, res.Formatted, res.AlreadyStyled)
	fmt.Fprintf(w, "   Duplicates: %d | Trigger failures: %d | Iterations: %d\n", res.Duplicates, res.TriggerFailures, res.Iterations)
	fmt.Fprintf(w, "   Duration: %s\n", res.Duration.Round(time.Millisecond))

	switch {
	case res.Aborted:
		colorWarning.Fprintf(w, "Aborted: %s\n", res.Reason)
	case res.Attempted == 0:
		fmt.Fprintf(w, "No occurrences of '%s' found.\n", res.Phrase)
	case res.Verified:
		colorSuccess.Fprintf(w, "Verified (%s check on %q)\n", res.Verification.Method, res.Verification.Matched)
	default:
		colorWarning.Fprintln(w, "Verification failed: no occurrence shows the requested style")
	}
}

// FormatVerification prints the outcome of a standalone verification.
func FormatVerification(w io.Writer, phrase string, styles host.StyleSet, verified bool, matched string) {
	if verified {
		colorSuccess.Fprintf(w, "'%s' is %s (sampled %q)\n", phrase, styles, matched)
		return
	}
	colorWarning.Fprintf(w, "'%s' is not %s\n", phrase, styles)
}

// FormatJSON prints v as indented JSON.
func FormatJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
