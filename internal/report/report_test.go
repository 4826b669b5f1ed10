package report

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"reflect"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/f4ah6o/docstyler-go/internal/document"
	"github.com/f4ah6o/docstyler-go/internal/engine"
	"github.com/f4ah6o/docstyler-go/internal/fingerprint"
	"github.com/f4ah6o/docstyler-go/internal/host"
	"github.com/f4ah6o/docstyler-go/internal/locator"
	"github.com/f4ah6o/docstyler-go/internal/verifier"
)

func init() {
	color.NoColor = true
}

func load(t *testing.T, body string) *document.Document {
	t.Helper()
	d, err := document.LoadString("<body>"+body+"</body>", document.Options{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("LoadString() error: %v", err)
	}
	return d
}

func TestOccurrences(t *testing.T) {
	d := load(t, `<p>alpha <b>beta</b> <b>alpha</b></p><p>Alpha <b>al</b>pha</p>`)

	occs := Occurrences(d, "alpha", locator.Options{}, fingerprint.Windows{}, 0)
	if len(occs) != 4 {
		t.Fatalf("Occurrences() = %+v, want 4", occs)
	}

	tests := []struct {
		text    string
		styles  []string
		context string
	}{
		{"alpha", []string{"plain"}, "[alpha] beta alpha"},
		{"alpha", []string{"bold"}, "alpha beta [alpha]"},
		{"Alpha", []string{"plain"}, "[Alpha] alpha"},
		{"alpha", []string{"mixed"}, "Alpha [alpha]"},
	}
	for i, tt := range tests {
		o := occs[i]
		if o.Index != i+1 || o.Text != tt.text || !reflect.DeepEqual(o.Styles, tt.styles) || o.Context != tt.context {
			t.Errorf("occurrence %d = %+v, want %q %v %q", i+1, o, tt.text, tt.styles, tt.context)
		}
	}
	if _, ok := d.Selection(); ok {
		t.Error("Occurrences() left a selection behind")
	}
}

func TestOccurrences_Limit(t *testing.T) {
	d := load(t, `<p>alpha alpha alpha</p>`)
	if got := Occurrences(d, "alpha", locator.Options{}, fingerprint.Windows{}, 2); len(got) != 2 {
		t.Errorf("Occurrences() returned %d, want 2", len(got))
	}
}

func TestOccurrences_MarksCollisions(t *testing.T) {
	tests := []struct {
		name    string
		windows fingerprint.Windows
		dups    []bool
	}{
		{"default windows", fingerprint.Windows{}, []bool{false, false, false}},
		{"narrow windows", fingerprint.Windows{Before: 1, After: 5}, []bool{false, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := load(t, `<p>one alpha two alpha</p><p>one alpha</p>`)
			occs := Occurrences(d, "alpha", locator.Options{}, tt.windows, 0)
			if len(occs) != len(tt.dups) {
				t.Fatalf("Occurrences() = %+v, want %d", occs, len(tt.dups))
			}
			for i, o := range occs {
				if o.Duplicate != tt.dups[i] {
					t.Errorf("occurrence %d Duplicate = %v, want %v", i+1, o.Duplicate, tt.dups[i])
				}
			}
		})
	}
}

func TestMarkContext(t *testing.T) {
	long := strings.Repeat("x", 40) + " alpha " + strings.Repeat("y", 40)
	got := markContext(host.Container{Text: long, Offset: 41}, "alpha")
	want := "…" + strings.Repeat("x", 29) + " [alpha] " + strings.Repeat("y", 29) + "…"
	if got != want {
		t.Errorf("markContext() = %q, want %q", got, want)
	}
}

func TestFormatOccurrences(t *testing.T) {
	var buf bytes.Buffer
	FormatOccurrences(&buf, nil, "alpha")
	if buf.String() != "No occurrences of 'alpha' found.\n" {
		t.Errorf("empty listing = %q", buf.String())
	}

	buf.Reset()
	FormatOccurrences(&buf, []Occurrence{{Index: 1, Text: "alpha", Range: host.Range{Start: 0, End: 5}, Context: "[alpha] beta", Styles: []string{"bold"}}}, "alpha")
	for _, want := range []string{"Occurrences of 'alpha'", "Found 1.", "1. alpha  (0-5, bold)\n", "[alpha] beta"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("listing %q missing %q", buf.String(), want)
		}
	}

	buf.Reset()
	FormatOccurrences(&buf, []Occurrence{{Index: 2, Text: "alpha", Range: host.Range{Start: 6, End: 11}, Styles: []string{"plain"}, Duplicate: true}}, "alpha")
	if !strings.Contains(buf.String(), "2. alpha  (6-11, plain) duplicate\n") {
		t.Errorf("listing %q does not mark the duplicate", buf.String())
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		name string
		res  engine.RunResult
		want string
	}{
		{"verified", engine.RunResult{Phrase: "alpha", Attempted: 1, Formatted: 1, Verified: true,
			Verification: verifier.Result{Verified: true, Method: verifier.MethodSample, Matched: "alpha"}}, `Verified (sample check on "alpha")`},
		{"aborted", engine.RunResult{Phrase: "alpha", Aborted: true, Reason: "max attempts exceeded"}, "Aborted: max attempts exceeded"},
		{"absent", engine.RunResult{Phrase: "alpha"}, "No occurrences of 'alpha' found."},
		{"unverified", engine.RunResult{Phrase: "alpha", Attempted: 2}, "Verification failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatResult(&buf, tt.res)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("FormatResult() = %q, missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	res := engine.RunResult{Phrase: "alpha", Styles: host.StyleSet{Bold: true}, Attempted: 4, Formatted: 4, Verified: true}
	if err := FormatJSON(&buf, res); err != nil {
		t.Fatalf("FormatJSON() error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["attempted"] != float64(4) || decoded["verified"] != true || decoded["already_styled"] != float64(0) {
		t.Errorf("decoded = %v", decoded)
	}
}
