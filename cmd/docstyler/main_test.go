package main

import (
	"flag"
	"io"
	"reflect"
	"testing"

	"github.com/f4ah6o/docstyler-go/internal/engine"
)

func TestParseInterspersed(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		positional []string
		bold       bool
		out        string
	}{
		{"flags first", []string{"-bold", "-o", "x.html", "doc.html", "alpha"}, []string{"doc.html", "alpha"}, true, "x.html"},
		{"flags last", []string{"doc.html", "alpha", "-bold", "-o", "x.html"}, []string{"doc.html", "alpha"}, true, "x.html"},
		{"mixed", []string{"doc.html", "-o", "y.html", "tight junction"}, []string{"doc.html", "tight junction"}, false, "y.html"},
		{"terminator", []string{"doc.html", "--", "-bold"}, []string{"doc.html", "-bold"}, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			fs.SetOutput(io.Discard)
			bold := fs.Bool("bold", false, "")
			out := fs.String("o", "", "")

			got := parseInterspersed(fs, tt.args)
			if !reflect.DeepEqual(got, tt.positional) || *bold != tt.bold || *out != tt.out {
				t.Errorf("parseInterspersed() = %v bold=%v o=%q", got, *bold, *out)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		res  engine.RunResult
		want int
	}{
		{"verified", engine.RunResult{Attempted: 2, Formatted: 2, Verified: true}, exitOK},
		{"nothing found", engine.RunResult{}, exitOK},
		{"aborted", engine.RunResult{Attempted: 200, Aborted: true}, exitAborted},
		{"unverified", engine.RunResult{Attempted: 1}, exitUnverified},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.res); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
