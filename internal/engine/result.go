package engine

import (
	"fmt"
	"time"

	"github.com/f4ah6o/docstyler-go/internal/host"
	"github.com/f4ah6o/docstyler-go/internal/verifier"
)

// State is a step of the scan-transform loop.
type State int

const (
	Searching State = iota
	Formatting
	Settling
	Done
	Aborted
)

func (s State) String() string {
	switch s {
	case Searching:
		return "searching"
	case Formatting:
		return "formatting"
	case Settling:
		return "settling"
	case Done:
		return "done"
	case Aborted:
		return "aborted"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// RunResult is produced once per run.
type RunResult struct {
	Phrase string        `json:"phrase" yaml:"phrase"`
	Styles host.StyleSet `json:"styles" yaml:"styles"`

	Attempted int    `json:"attempted" yaml:"attempted"`
	Formatted int    `json:"formatted" yaml:"formatted"`
	Verified  bool   `json:"verified" yaml:"verified"`
	Aborted   bool   `json:"aborted" yaml:"aborted"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`

	AlreadyStyled   int           `json:"already_styled" yaml:"already_styled"`
	Duplicates      int           `json:"duplicates" yaml:"duplicates"`
	TriggerFailures int           `json:"trigger_failures" yaml:"trigger_failures"`
	Iterations      int           `json:"iterations" yaml:"iterations"`
	Duration        time.Duration `json:"duration" yaml:"duration"`

	Verification verifier.Result `json:"verification" yaml:"-"`
	Code         host.Code       `json:"code,omitempty" yaml:"code,omitempty"`

	err error
}

// Err returns the outcome as an error: the abort cause, a verification
// failure after at least one attempt, or nil.
func (r RunResult) Err() error {
	if r.err != nil {
		return r.err
	}
	if r.Aborted {
		return fmt.Errorf("run aborted: %s", r.Reason)
	}
	if r.Attempted > 0 && !r.Verified {
		return fmt.Errorf("%w: no %s occurrence of %q found", host.ErrVerificationFailed, r.Styles, r.Phrase)
	}
	return nil
}
