package notify

import (
	"bytes"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/f4ah6o/docstyler-go/internal/document"
)

func TestTerminal(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		level Level
		want  string
	}{
		{Info, "• working\n"},
		{Success, "✓ working\n"},
		{Warning, "! working\n"},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			NewTerminal(&buf).Notify(tt.level, "working")
			if buf.String() != tt.want {
				t.Errorf("Notify() wrote %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestDocument_NoticeExpires(t *testing.T) {
	d, err := document.LoadString(`<body><p>alpha</p></body>`, document.Options{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("LoadString() error: %v", err)
	}

	NewDocument(d, 20*time.Millisecond).Notify(Success, "Formatted 1 occurrence")
	if got := d.Notices(); len(got) != 1 || got[0] != "Formatted 1 occurrence" {
		t.Fatalf("Notices() = %v", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(d.Notices()) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("notice was never removed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestDocument_NoTimeoutKeepsNotice(t *testing.T) {
	d, err := document.LoadString(`<body><p>alpha</p></body>`, document.Options{Logger: log.New(io.Discard, "", 0)})
	if err != nil {
		t.Fatalf("LoadString() error: %v", err)
	}
	NewDocument(d, 0).Notify(Info, "hello")
	time.Sleep(10 * time.Millisecond)
	if len(d.Notices()) != 1 {
		t.Errorf("Notices() = %v, want the notice kept", d.Notices())
	}
}

func TestMulti(t *testing.T) {
	var got []string
	record := Func(func(l Level, m string) { got = append(got, l.String()+":"+m) })

	Multi{record, nil, Discard, record}.Notify(Warning, "retry")
	if strings.Join(got, ",") != "warning:retry,warning:retry" {
		t.Errorf("Multi delivered %v", got)
	}
}
