package host

import (
	"fmt"
	"strings"
)

// FormatRequest asks for every occurrence of Phrase to receive Styles.
// It is immutable for the duration of a run.
type FormatRequest struct {
	Phrase string   `json:"phrase" yaml:"phrase"`
	Styles StyleSet `json:"styles" yaml:"styles"`
}

// Normalized returns a copy with surrounding whitespace removed from Phrase.
func (r FormatRequest) Normalized() FormatRequest {
	r.Phrase = strings.TrimSpace(r.Phrase)
	return r
}

// Validate enforces the request boundary rules: a non-empty phrase and at
// least one requested style.
func (r FormatRequest) Validate() error {
	if strings.TrimSpace(r.Phrase) == "" {
		return fmt.Errorf("%w: phrase is empty", ErrInvalidRequest)
	}
	if !r.Styles.Any() {
		return fmt.Errorf("%w: no style selected", ErrInvalidRequest)
	}
	return nil
}

// Ack is the synchronous acknowledgement returned when a request is accepted.
// It only says whether a run was started, never how it ended.
type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
