// Package main is the entry point for the docstyler tool.
// docstyler finds every occurrence of a phrase in a rich-text document and
// formats each one exactly once: locate, fingerprint, trigger, settle, verify.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/f4ah6o/docstyler-go/internal/config"
	"github.com/f4ah6o/docstyler-go/internal/document"
	"github.com/f4ah6o/docstyler-go/internal/engine"
	"github.com/f4ah6o/docstyler-go/internal/export"
	"github.com/f4ah6o/docstyler-go/internal/fingerprint"
	"github.com/f4ah6o/docstyler-go/internal/host"
	"github.com/f4ah6o/docstyler-go/internal/locator"
	"github.com/f4ah6o/docstyler-go/internal/notify"
	"github.com/f4ah6o/docstyler-go/internal/report"
	"github.com/f4ah6o/docstyler-go/internal/server"
	"github.com/f4ah6o/docstyler-go/internal/session"
	"github.com/f4ah6o/docstyler-go/internal/trigger"
	"github.com/f4ah6o/docstyler-go/internal/verifier"
)

// Exit codes.
const (
	exitOK         = 0
	exitUsage      = 1
	exitAborted    = 2
	exitUnverified = 3
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitUsage)
	}

	subcommand := os.Args[1]

	switch subcommand {
	case "apply":
		os.Exit(runApply(os.Args[2:]))
	case "find":
		runFind(os.Args[2:])
	case "verify":
		os.Exit(runVerify(os.Args[2:]))
	case "serve":
		runServe(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", subcommand)
		printUsage()
		os.Exit(exitUsage)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `docstyler - Find a phrase in a rich-text document and format every occurrence

Usage:
  docstyler apply  <FILE|URL> <PHRASE> [-bold] [-italic] [-underline] [options]
  docstyler find   <FILE|URL> <PHRASE> [options]
  docstyler verify <FILE|URL> <PHRASE> [-bold] [-italic] [-underline] [options]
  docstyler serve  -file <FILE> [-port 8080] [options]
  docstyler help

Commands:
  apply       Format every occurrence and write the result
  find        List occurrences with their context and current style
  verify      Check whether the phrase already carries the styles
  serve       Serve a document over HTTP and accept format requests
  help        Show this help message

Configuration:
  Settings are read from -config, $DOCSTYLER_CONFIG, ./docstyler.toml
  (or .yaml), or the user config directory, in that order.

Exit codes:
  0  success
  1  usage or I/O error
  2  run aborted
  3  verification failed

For more information on a command, use:
  docstyler <command> -h
`)
}

// parseInterspersed parses fs while allowing flags after positional
// arguments, and returns the positionals.
func parseInterspersed(fs *flag.FlagSet, args []string) []string {
	var positional []string
	for {
		fs.Parse(args)
		args = fs.Args()
		if len(args) == 0 {
			return positional
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

type styleFlags struct {
	bold, italic, underline bool
}

func (s *styleFlags) register(fs *flag.FlagSet) {
	fs.BoolVar(&s.bold, "bold", false, "Apply bold")
	fs.BoolVar(&s.italic, "italic", false, "Apply italic")
	fs.BoolVar(&s.underline, "underline", false, "Apply underline")
}

func (s styleFlags) set() host.StyleSet {
	return host.StyleSet{Bold: s.bold, Italic: s.italic, Underline: s.underline}
}

func loadConfig(path string) config.Config {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func loadDocument(ctx context.Context, src string, opts document.Options) *document.Document {
	var (
		doc *document.Document
		err error
	)
	if document.IsURL(src) {
		doc, err = document.Fetch(ctx, src, opts)
	} else {
		doc, err = document.LoadFile(src, opts)
	}
	if err != nil {
		log.Fatalf("Failed to load %s: %v", src, err)
	}
	return doc
}

// newSession wires a document to an engine the way cfg describes.
func newSession(doc *document.Document, cfg config.Config, sleeper engine.Sleeper, notifier notify.Notifier) *session.Session {
	trig, err := trigger.Build(cfg.Trigger.Strategies, trigger.Env{Doc: doc, Logger: log.Default()})
	if err != nil {
		log.Fatalf("Failed to build trigger: %v", err)
	}
	eng := engine.New(doc, trig, cfg.RunConfig(sleeper, log.Default()))
	return session.New(doc, eng, session.Options{
		NormalizeFirst: cfg.Engine.NormalizeFirst,
		Notifier:       notifier,
		Logger:         log.Default(),
	})
}

func requireArgs(fs *flag.FlagSet, positional []string, n int, what string) {
	if len(positional) < n {
		fmt.Fprintf(os.Stderr, "Error: %s required\n\n", what)
		fs.Usage()
		os.Exit(exitUsage)
	}
}

// exitCode maps a finished run onto the process exit status.
func exitCode(res engine.RunResult) int {
	switch {
	case res.Aborted:
		return exitAborted
	case res.Attempted > 0 && !res.Verified:
		return exitUnverified
	}
	return exitOK
}

func runApply(args []string) int {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)

	var (
		styles       styleFlags
		configPath   string
		htmlOut      string
		markdownOut  string
		jsonOutput   bool
		noNormalize  bool
		matchCase    bool
		fast         bool
		quiet        bool
		maxIteration int
	)

	styles.register(fs)
	fs.StringVar(&configPath, "config", "", "Path to a TOML or YAML config file")
	fs.StringVar(&htmlOut, "o", "", "Write the formatted document as HTML")
	fs.StringVar(&markdownOut, "markdown", "", "Write the formatted document as Markdown with frontmatter")
	fs.BoolVar(&jsonOutput, "json", false, "Print the run result as JSON")
	fs.BoolVar(&noNormalize, "no-normalize", false, "Skip the replace-all normalization before the run")
	fs.BoolVar(&matchCase, "match-case", false, "Match case when searching")
	fs.BoolVar(&fast, "fast", false, "Skip settle delays (safe when the document renders synchronously)")
	fs.BoolVar(&quiet, "quiet", false, "Suppress notifications")
	fs.IntVar(&maxIteration, "max-iterations", 0, "Override the iteration cap")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: docstyler apply <FILE|URL> <PHRASE> [options]

Format every occurrence of PHRASE with the selected styles.

Arguments:
  FILE|URL    HTML document to load
  PHRASE      Literal text to format

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  docstyler apply notes.html dopamine -bold
  docstyler apply notes.html "tight junction" -italic -underline -o out.html
  docstyler apply https://example.com/doc.html alpha -bold -markdown out.md -json
`)
	}

	positional := parseInterspersed(fs, args)
	requireArgs(fs, positional, 2, "document and phrase are")
	src, phrase := positional[0], positional[1]

	cfg := loadConfig(configPath)
	if noNormalize {
		cfg.Engine.NormalizeFirst = false
	}
	if matchCase {
		cfg.Locator.MatchCase = true
	}
	if maxIteration > 0 {
		cfg.Engine.MaxIterations = maxIteration
	}
	if quiet {
		cfg.Notify.Quiet = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc := loadDocument(ctx, src, cfg.DocumentOptions(log.Default()))
	defer doc.Close()

	sleeper := engine.RealTime
	if fast {
		sleeper = engine.SleeperFunc(func(ctx context.Context, _ time.Duration) error {
			doc.Flush()
			return ctx.Err()
		})
	}

	var notifier notify.Notifier = notify.Discard
	if !cfg.Notify.Quiet && !jsonOutput {
		notifier = notify.NewTerminal(os.Stderr)
	}
	sess := newSession(doc, cfg, sleeper, notifier)
	go func() {
		<-ctx.Done()
		sess.Close()
	}()

	ack := sess.Handle(host.FormatRequest{Phrase: phrase, Styles: styles.set()})
	if !ack.Success {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", ack.Error)
		fs.Usage()
		return exitUsage
	}
	res, _ := sess.Wait()
	doc.Flush()

	if jsonOutput {
		if err := report.FormatJSON(os.Stdout, res); err != nil {
			log.Fatalf("Failed to format JSON output: %v", err)
		}
	} else {
		report.FormatResult(os.Stdout, res)
	}

	w := export.New()
	if htmlOut != "" {
		if err := w.WriteHTML(htmlOut, doc); err != nil {
			log.Fatalf("Failed to write HTML: %v", err)
		}
	}
	if markdownOut != "" {
		fm := export.NewFrontmatter(doc.Title(), src, res, time.Now())
		if err := w.WriteMarkdown(markdownOut, doc, &fm); err != nil {
			log.Fatalf("Failed to write Markdown: %v", err)
		}
	}

	return exitCode(res)
}

func runFind(args []string) {
	fs := flag.NewFlagSet("find", flag.ExitOnError)

	var (
		configPath string
		maxResults int
		jsonOutput bool
		matchCase  bool
		wholeWord  bool
	)

	fs.StringVar(&configPath, "config", "", "Path to a TOML or YAML config file")
	fs.IntVar(&maxResults, "max-results", 0, "Maximum number of occurrences to list (0 = all)")
	fs.BoolVar(&jsonOutput, "json", false, "Output occurrences as JSON")
	fs.BoolVar(&matchCase, "match-case", false, "Match case when searching")
	fs.BoolVar(&wholeWord, "whole-word", false, "Match whole words only")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: docstyler find <FILE|URL> <PHRASE> [options]

List every occurrence of PHRASE with its context and current style.

Options:
`)
		fs.PrintDefaults()
	}

	positional := parseInterspersed(fs, args)
	requireArgs(fs, positional, 2, "document and phrase are")
	src, phrase := positional[0], strings.TrimSpace(positional[1])

	cfg := loadConfig(configPath)
	opts := locator.Options{MatchCase: cfg.Locator.MatchCase || matchCase, WholeWord: cfg.Locator.WholeWord || wholeWord}

	doc := loadDocument(context.Background(), src, cfg.DocumentOptions(log.Default()))
	defer doc.Close()

	windows := fingerprint.Windows{Before: cfg.Fingerprint.Before, After: cfg.Fingerprint.After}
	occs := report.Occurrences(doc, phrase, opts, windows, maxResults)
	if jsonOutput {
		if err := report.FormatJSON(os.Stdout, occs); err != nil {
			log.Fatalf("Failed to format JSON output: %v", err)
		}
		return
	}
	report.FormatOccurrences(os.Stdout, occs, phrase)
}

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)

	var (
		styles     styleFlags
		configPath string
		jsonOutput bool
	)

	styles.register(fs)
	fs.StringVar(&configPath, "config", "", "Path to a TOML or YAML config file")
	fs.BoolVar(&jsonOutput, "json", false, "Output the verification as JSON")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: docstyler verify <FILE|URL> <PHRASE> [-bold] [-italic] [-underline] [options]

Sample one occurrence of PHRASE and check its effective style. Exits with 3
when no occurrence carries every selected style.

Options:
`)
		fs.PrintDefaults()
	}

	positional := parseInterspersed(fs, args)
	requireArgs(fs, positional, 2, "document and phrase are")
	req := host.FormatRequest{Phrase: positional[1], Styles: styles.set()}.Normalized()
	if err := req.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		fs.Usage()
		return exitUsage
	}

	cfg := loadConfig(configPath)
	doc := loadDocument(context.Background(), positional[0], cfg.DocumentOptions(log.Default()))
	defer doc.Close()

	loc := locator.New(doc, locator.Options{MatchCase: cfg.Locator.MatchCase, WholeWord: cfg.Locator.WholeWord})
	res := verifier.New(doc, loc, log.Default()).Verify(req.Phrase, req.Styles)

	if jsonOutput {
		if err := report.FormatJSON(os.Stdout, res); err != nil {
			log.Fatalf("Failed to format JSON output: %v", err)
		}
	} else {
		report.FormatVerification(os.Stdout, req.Phrase, req.Styles, res.Verified, res.Matched)
	}
	if !res.Verified {
		return exitUnverified
	}
	return exitOK
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)

	var (
		file       string
		port       int
		configPath string
	)

	fs.StringVar(&file, "file", "", "HTML document to serve (required)")
	fs.IntVar(&port, "port", 8080, "Port to serve on")
	fs.StringVar(&configPath, "config", "", "Path to a TOML or YAML config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: docstyler serve -file <FILE> [options]

Serve a document and accept format requests over HTTP:
  POST /api/style     {"phrase": "...", "styles": {"bold": true}}
  GET  /api/result    last run result (204 before the first run)
  GET  /document      current HTML
  GET  /document.md   Markdown export

Options:
`)
		fs.PrintDefaults()
	}

	positional := parseInterspersed(fs, args)
	if file == "" && len(positional) > 0 {
		file = positional[0]
	}
	if file == "" {
		fmt.Fprintf(os.Stderr, "Error: -file is required\n\n")
		fs.Usage()
		os.Exit(exitUsage)
	}

	cfg := loadConfig(configPath)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc := loadDocument(ctx, file, cfg.DocumentOptions(log.Default()))
	defer doc.Close()

	var notifiers notify.Multi
	if !cfg.Notify.Quiet {
		notifiers = append(notifiers, notify.NewTerminal(os.Stderr))
	}
	if cfg.Notify.OnDocument {
		notifiers = append(notifiers, notify.NewDocument(doc, cfg.Notify.Timeout.Duration))
	}
	sess := newSession(doc, cfg, engine.RealTime, notifiers)
	defer sess.Close()

	addr := fmt.Sprintf(":%d", port)
	fmt.Printf("🌐 Serving %s at http://localhost%s\n", file, addr)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.New(sess, doc, file, log.Default()).ListenAndServe(ctx, addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
