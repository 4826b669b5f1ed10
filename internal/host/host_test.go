package host

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, CodeNone},
		{"cancel", fmt.Errorf("run aborted: %w", context.Canceled), CodeCancel},
		{"deadline", context.DeadlineExceeded, CodeCancel},
		{"exhausted", ErrRunExhausted, CodeRunExhausted},
		{"verification", fmt.Errorf("%w: alpha", ErrVerificationFailed), CodeVerificationFailed},
		{"busy", ErrRunInProgress, CodeBusy},
		{"invalid", ErrInvalidRequest, CodeInvalidRequest},
		{"control disabled", fmt.Errorf("%w: #boldButton", ErrControlDisabled), CodeTriggerUnavailable},
		{"no selection", ErrNoSelection, CodeTriggerUnavailable},
		{"other", errors.New("boom"), CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestFormatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     FormatRequest
		wantErr bool
	}{
		{"valid", FormatRequest{Phrase: "alpha", Styles: StyleSet{Bold: true}}, false},
		{"blank phrase", FormatRequest{Phrase: "  \t", Styles: StyleSet{Bold: true}}, true},
		{"no styles", FormatRequest{Phrase: "alpha"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Validate() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestFormatRequest_Normalized(t *testing.T) {
	req := FormatRequest{Phrase: "  tight junction \n"}.Normalized()
	if req.Phrase != "tight junction" {
		t.Errorf("Normalized().Phrase = %q", req.Phrase)
	}
}

func TestRange(t *testing.T) {
	r := Range{Start: 3, End: 8}
	if r.Len() != 5 || r.Collapsed() {
		t.Errorf("Range %v: Len %d Collapsed %v", r, r.Len(), r.Collapsed())
	}
	if c := r.CollapseToEnd(); c.Start != 8 || !c.Collapsed() {
		t.Errorf("CollapseToEnd() = %v", c)
	}
}

func TestComputedStyle_Satisfies(t *testing.T) {
	bold := ComputedStyle{FontWeight: "700", FontStyle: "normal", TextDecoration: "none"}
	semibold := ComputedStyle{FontWeight: "600", FontStyle: "italic", TextDecoration: "underline solid"}
	plain := ComputedStyle{FontWeight: "400", FontStyle: "normal", TextDecoration: "none"}

	tests := []struct {
		name  string
		style ComputedStyle
		set   StyleSet
		want  bool
	}{
		{"bold 700", bold, StyleSet{Bold: true}, true},
		{"bold keyword", ComputedStyle{FontWeight: "bold"}, StyleSet{Bold: true}, true},
		{"fractional weight", ComputedStyle{FontWeight: "650.0"}, StyleSet{Bold: true}, true},
		{"just below 600", ComputedStyle{FontWeight: "599.5"}, StyleSet{Bold: true}, false},
		{"relative keyword", ComputedStyle{FontWeight: "bolder"}, StyleSet{Bold: true}, false},
		{"bold 600 italic underline", semibold, StyleSet{Bold: true, Italic: true, Underline: true}, true},
		{"missing italic", bold, StyleSet{Bold: true, Italic: true}, false},
		{"plain", plain, StyleSet{Underline: true}, false},
		{"nothing requested", plain, StyleSet{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.style.Satisfies(tt.set); got != tt.want {
				t.Errorf("Satisfies(%v) = %v, want %v", tt.set, got, tt.want)
			}
		})
	}

	if AllHave(nil, Bold) {
		t.Error("AllHave(nil) = true")
	}
	if AllHave([]ComputedStyle{bold, plain}, Bold) {
		t.Error("AllHave(mixed) = true")
	}
	if !AllHave([]ComputedStyle{bold, semibold}, Bold) {
		t.Error("AllHave(bold, semibold) = false")
	}
}
