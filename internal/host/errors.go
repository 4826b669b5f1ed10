package host

import (
	"context"
	"errors"
)

var (
	// ErrTriggerUnavailable: no formatting strategy could be invoked.
	ErrTriggerUnavailable = errors.New("trigger unavailable")
	// ErrRunExhausted: the iteration cap was reached.
	ErrRunExhausted = errors.New("max attempts exceeded")
	// ErrVerificationFailed: no evidence of the requested style after a run.
	ErrVerificationFailed = errors.New("verification failed")
	// ErrRunInProgress: a run is already active on the document.
	ErrRunInProgress = errors.New("run already in progress")
	// ErrInvalidRequest: the request failed boundary validation.
	ErrInvalidRequest = errors.New("invalid request")

	ErrNoEditor        = errors.New("editor not found")
	ErrNoSelection     = errors.New("no selection")
	ErrInvalidRange    = errors.New("invalid range")
	ErrControlMissing  = errors.New("control not found")
	ErrControlDisabled = errors.New("control disabled")
	ErrNotFocused      = errors.New("editor not focused")
)

// Code is the error taxonomy used in logs and results.
type Code string

const (
	CodeNone               Code = ""
	CodeTriggerUnavailable Code = "trigger_unavailable"
	CodeRunExhausted       Code = "run_exhausted"
	CodeVerificationFailed Code = "verification_failed"
	CodeInvalidRequest     Code = "invalid_request"
	CodeBusy               Code = "busy"
	CodeCancel             Code = "cancel"
	CodeUnknown            Code = "unknown"
)

// Classify maps an error onto the taxonomy by sentinel only.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCancel
	case errors.Is(err, ErrRunExhausted):
		return CodeRunExhausted
	case errors.Is(err, ErrVerificationFailed):
		return CodeVerificationFailed
	case errors.Is(err, ErrRunInProgress):
		return CodeBusy
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrTriggerUnavailable),
		errors.Is(err, ErrControlMissing),
		errors.Is(err, ErrControlDisabled),
		errors.Is(err, ErrNotFocused),
		errors.Is(err, ErrNoSelection),
		errors.Is(err, ErrInvalidRange):
		return CodeTriggerUnavailable
	}
	return CodeUnknown
}
