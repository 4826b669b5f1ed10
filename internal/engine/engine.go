// Package engine runs the scan-transform loop: it walks every occurrence of a
// phrase in a live document, formats each one once, and verifies the outcome
// after the fact.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/f4ah6o/docstyler-go/internal/fingerprint"
	"github.com/f4ah6o/docstyler-go/internal/host"
	"github.com/f4ah6o/docstyler-go/internal/locator"
	"github.com/f4ah6o/docstyler-go/internal/trigger"
	"github.com/f4ah6o/docstyler-go/internal/verifier"
)

const (
	DefaultMaxIterations = 200
	DefaultStyleSettle   = 300 * time.Millisecond
	DefaultPassSettle    = 800 * time.Millisecond
	DefaultVerifyDelay   = 500 * time.Millisecond
)

// Config tunes a run.
type Config struct {
	// MaxIterations caps how many located matches one run may process.
	MaxIterations int
	StyleSettle   time.Duration
	PassSettle    time.Duration
	VerifyDelay   time.Duration

	Windows fingerprint.Windows
	Locator locator.Options

	// Sleeper defaults to RealTime.
	Sleeper Sleeper
	// Logger defaults to log.Default().
	Logger *log.Logger
}

// DefaultConfig returns the stock delays and cap.
func DefaultConfig() Config {
	return Config{
		MaxIterations: DefaultMaxIterations,
		StyleSettle:   DefaultStyleSettle,
		PassSettle:    DefaultPassSettle,
		VerifyDelay:   DefaultVerifyDelay,
		Windows:       fingerprint.DefaultWindows(),
	}
}

// Engine formats phrases in one document. It keeps no state between runs.
type Engine struct {
	doc     host.Document
	trig    *trigger.Trigger
	cfg     Config
	sleeper Sleeper
	logger  *log.Logger
}

// New creates an Engine. Zero config values fall back to the defaults.
func New(doc host.Document, trig *trigger.Trigger, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.Windows == (fingerprint.Windows{}) {
		cfg.Windows = def.Windows
	}
	e := &Engine{doc: doc, trig: trig, cfg: cfg, sleeper: cfg.Sleeper, logger: cfg.Logger}
	if e.sleeper == nil {
		e.sleeper = RealTime
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// run is the context threaded through one run's states. It is owned by a
// single Run call.
type run struct {
	req     host.FormatRequest
	loc     *locator.Locator
	ledger  fingerprint.Ledger
	state   State
	current locator.Occurrence
	res     RunResult
}

// Run executes the loop for req until Done or Aborted, then verifies. The
// only error returned is an invalid request; every other failure is recorded
// in the result.
func (e *Engine) Run(ctx context.Context, req host.FormatRequest) (RunResult, error) {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return RunResult{}, err
	}

	start := time.Now()
	r := &run{
		req:   req,
		loc:   locator.New(e.doc, e.cfg.Locator),
		state: Searching,
		res:   RunResult{Phrase: req.Phrase, Styles: req.Styles},
	}
	e.logger.Printf("Formatting %q as %s", req.Phrase, req.Styles)

	// Start from the top regardless of what was selected before.
	e.doc.ClearSelection()

	for r.state != Done && r.state != Aborted {
		switch r.state {
		case Searching:
			e.search(ctx, r)
		case Formatting:
			e.format(ctx, r)
		case Settling:
			e.settle(ctx, r)
		}
	}

	if err := e.sleeper.Sleep(ctx, e.cfg.VerifyDelay); err != nil && r.state != Aborted {
		e.logger.Printf("Warning: verifying without waiting for the document to settle: %v", err)
	}
	ver := verifier.New(e.doc, r.loc, e.logger).Verify(req.Phrase, req.Styles)
	r.res.Verification = ver
	r.res.Verified = ver.Verified
	if !ver.Verified && r.res.Attempted > 0 {
		e.logger.Printf("Warning: verification found no %s occurrence of %q", req.Styles, req.Phrase)
	}

	r.res.Duration = time.Since(start)
	r.res.Code = host.Classify(r.res.Err())
	e.logger.Printf("Run finished: attempted=%d formatted=%d already_styled=%d duplicates=%d verified=%t",
		r.res.Attempted, r.res.Formatted, r.res.AlreadyStyled, r.res.Duplicates, r.res.Verified)
	return r.res, nil
}

func (e *Engine) search(ctx context.Context, r *run) {
	if err := ctx.Err(); err != nil {
		e.abort(r, err)
		return
	}
	r.res.Iterations++

	// Drop the stale selection but keep the caret so find moves forward.
	e.doc.CollapseSelection(true)

	occ, ok := r.loc.Locate(r.req.Phrase)
	if !ok {
		r.state = Done
		return
	}
	if r.res.Iterations > e.cfg.MaxIterations {
		e.abort(r, host.ErrRunExhausted)
		return
	}

	fp, err := fingerprint.Of(e.doc, occ.Range, e.cfg.Windows)
	if err != nil {
		e.logger.Printf("Warning: skipping %q at %d: %v", occ.MatchedText, occ.Range.Start, err)
		e.doc.Select(occ.Range.CollapseToEnd())
		return
	}
	if r.ledger.Seen(fp) {
		r.res.Duplicates++
		e.doc.Select(occ.Range.CollapseToEnd())
		return
	}

	r.ledger.Record(fp)
	r.res.Attempted++
	r.current = occ
	r.state = Formatting
}

func (e *Engine) format(ctx context.Context, r *run) {
	occ := r.current
	triggered, failed := false, false

	for _, style := range r.req.Styles.Requested() {
		// Triggering one style may move the selection.
		e.doc.Select(occ.Range)

		if computed, err := e.doc.ComputedStyles(occ.Range); err == nil && host.AllHave(computed, style) {
			continue
		}

		used, err := e.trig.Fire(ctx, style)
		if err != nil {
			if ctx.Err() != nil {
				if triggered {
					r.res.Formatted++
				}
				e.abort(r, ctx.Err())
				return
			}
			r.res.TriggerFailures++
			failed = true
			e.logger.Printf("Warning: could not apply %s to %q: %v", style, occ.MatchedText, err)
			continue
		}
		triggered = true
		e.logger.Printf("Applied %s to %q at %d via %s", style, occ.MatchedText, occ.Range.Start, used)

		if err := e.sleeper.Sleep(ctx, e.cfg.StyleSettle); err != nil {
			r.res.Formatted++
			e.abort(r, err)
			return
		}
	}

	switch {
	case triggered:
		r.res.Formatted++
	case !failed:
		r.res.AlreadyStyled++
	}
	r.state = Settling
}

func (e *Engine) settle(ctx context.Context, r *run) {
	if err := e.sleeper.Sleep(ctx, e.cfg.PassSettle); err != nil {
		e.abort(r, err)
		return
	}
	r.state = Searching
}

func (e *Engine) abort(r *run, cause error) {
	r.state = Aborted
	r.res.Aborted = true
	r.res.Reason = cause.Error()
	if errors.Is(cause, host.ErrRunExhausted) {
		r.res.err = cause
	} else {
		r.res.err = fmt.Errorf("run aborted: %w", cause)
	}
	e.logger.Printf("Warning: run aborted after %d iterations: %s", r.res.Iterations, r.res.Reason)
}
