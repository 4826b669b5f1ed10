// Package server exposes a document session over HTTP, in the shape of the
// extension message channel: a request is acknowledged at once and the
// outcome is fetched separately.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/f4ah6o/docstyler-go/internal/export"
	"github.com/f4ah6o/docstyler-go/internal/host"
	"github.com/f4ah6o/docstyler-go/internal/session"
)

const maxRequestBody = 1 << 20

// Page is the served document.
type Page interface {
	export.Source
}

// Server routes HTTP requests to a session.
type Server struct {
	sess   *session.Session
	page   Page
	source string
	writer *export.Writer
	logger *log.Logger
}

// New creates a Server. source names the document in Markdown frontmatter.
func New(sess *session.Session, page Page, source string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{sess: sess, page: page, source: source, writer: export.New(), logger: logger}
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/style", s.handleStyle)
	mux.HandleFunc("GET /api/result", s.handleResult)
	mux.HandleFunc("GET /document", s.handleDocument)
	mux.HandleFunc("GET /document.md", s.handleMarkdown)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/document", http.StatusFound)
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Printf("%s %s", r.Method, r.URL.Path)
		mux.ServeHTTP(w, r)
	})
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	var req host.FormatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, host.Ack{Success: false, Error: fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	ack := s.sess.Handle(req)
	status := http.StatusAccepted
	switch {
	case ack.Success:
	case ack.Error == host.ErrRunInProgress.Error():
		status = http.StatusConflict
	case strings.HasPrefix(ack.Error, host.ErrInvalidRequest.Error()):
		status = http.StatusBadRequest
	default:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, ack)
}

func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.sess.Last()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDocument(w http.ResponseWriter, _ *http.Request) {
	page, err := s.page.HTML()
	if err != nil {
		s.logger.Printf("Error rendering document: %v", err)
		http.Error(w, "failed to render document", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (s *Server) handleMarkdown(w http.ResponseWriter, _ *http.Request) {
	var (
		out string
		err error
	)
	if res, ok := s.sess.Last(); ok {
		out, err = s.writer.MarkdownWithFrontmatter(s.page, export.NewFrontmatter(s.page.Title(), s.source, res, time.Now()))
	} else {
		out, err = s.writer.Markdown(s.page)
	}
	if err != nil {
		s.logger.Printf("Error exporting markdown: %v", err)
		http.Error(w, "failed to export markdown", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to write response: %v", err)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	}
}
