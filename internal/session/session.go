// Package session is the inbound boundary for formatting requests. It
// acknowledges a request at once and runs the engine in the background, one
// run per document at a time.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/f4ah6o/docstyler-go/internal/engine"
	"github.com/f4ah6o/docstyler-go/internal/host"
	"github.com/f4ah6o/docstyler-go/internal/notify"
)

// Document is a host document that also supports bulk replacement, used as
// the normalization stage before a run.
type Document interface {
	host.Document
	ReplaceAll(find, replace string, matchCase bool) int
}

// Options configures a Session.
type Options struct {
	// NormalizeFirst replaces the phrase with itself before each run so that
	// every occurrence is one formattable text run.
	NormalizeFirst bool
	Notifier       notify.Notifier
	Logger         *log.Logger
}

// Session serializes runs against one document.
type Session struct {
	doc    Document
	eng    *engine.Engine
	opts   Options
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running bool
	done    chan struct{}
	last    *engine.RunResult
}

// New creates a Session over doc, running eng.
func New(doc Document, eng *engine.Engine, opts Options) *Session {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{doc: doc, eng: eng, opts: opts, logger: logger, ctx: ctx, cancel: cancel}
}

// Handle validates req and, when it is acceptable and no run is active,
// starts a run. The acknowledgement says only whether a run started.
func (s *Session) Handle(req host.FormatRequest) host.Ack {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return host.Ack{Success: false, Error: err.Error()}
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return host.Ack{Success: false, Error: host.ErrRunInProgress.Error()}
	}
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return host.Ack{Success: false, Error: "session closed"}
	}
	s.running = true
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go s.run(req, done)
	return host.Ack{Success: true}
}

func (s *Session) run(req host.FormatRequest, done chan struct{}) {
	defer close(done)

	if s.opts.NormalizeFirst {
		n := s.doc.ReplaceAll(req.Phrase, req.Phrase, false)
		s.logger.Printf("Normalized %d occurrence(s) of %q", n, req.Phrase)
	}

	res, err := s.eng.Run(s.ctx, req)
	if err != nil {
		// Handle already validated the request.
		s.logger.Printf("Error: run rejected: %v", err)
		res = engine.RunResult{Phrase: req.Phrase, Styles: req.Styles, Aborted: true, Reason: err.Error(), Code: host.Classify(err)}
	}
	s.opts.Notifier.Notify(Summarize(res))

	s.mu.Lock()
	s.last = &res
	s.running = false
	s.mu.Unlock()
}

// Summarize turns a result into the user-facing notification.
func Summarize(res engine.RunResult) (notify.Level, string) {
	switch {
	case res.Aborted:
		return notify.Warning, fmt.Sprintf("Stopped formatting %q: %s. Please retry.", res.Phrase, res.Reason)
	case res.Attempted == 0:
		return notify.Info, fmt.Sprintf("No occurrences of %q found", res.Phrase)
	case !res.Verified:
		return notify.Warning, fmt.Sprintf("Formatting %q may have failed, please retry", res.Phrase)
	case res.AlreadyStyled > 0:
		return notify.Success, fmt.Sprintf("Formatted %d occurrence(s) of %q (%d already formatted)", res.Formatted, res.Phrase, res.AlreadyStyled)
	}
	return notify.Success, fmt.Sprintf("Formatted %d occurrence(s) of %q", res.Formatted, res.Phrase)
}

// Busy reports whether a run is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Wait blocks until the current run, if any, finishes and returns the most
// recent result.
func (s *Session) Wait() (engine.RunResult, bool) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
	return s.Last()
}

// Last returns the most recent finished result.
func (s *Session) Last() (engine.RunResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return engine.RunResult{}, false
	}
	return *s.last, true
}

// Close cancels an in-flight run, waits for it, and rejects further requests.
func (s *Session) Close() {
	s.cancel()
	s.Wait()
}
