// Package export writes a formatted document back out, either as HTML or as
// Markdown with YAML frontmatter describing the run that produced it.
package export

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/docstyler-go/internal/engine"
)

// Source is a document that can be serialized.
type Source interface {
	Title() string
	HTML() (string, error)
	EditorHTML() (string, error)
}

// Frontmatter is the metadata header of a Markdown export.
type Frontmatter struct {
	Title       string   `yaml:"title"`
	Source      string   `yaml:"source,omitempty"`
	Phrase      string   `yaml:"phrase,omitempty"`
	Styles      []string `yaml:"styles,omitempty"`
	Attempted   int      `yaml:"attempted"`
	Formatted   int      `yaml:"formatted"`
	Verified    bool     `yaml:"verified"`
	GeneratedAt string   `yaml:"generated_at"`
}

// NewFrontmatter describes res applied to the document titled title.
func NewFrontmatter(title, source string, res engine.RunResult, now time.Time) Frontmatter {
	var styles []string
	for _, s := range res.Styles.Requested() {
		styles = append(styles, s.String())
	}
	return Frontmatter{
		Title:       title,
		Source:      source,
		Phrase:      res.Phrase,
		Styles:      styles,
		Attempted:   res.Attempted,
		Formatted:   res.Formatted,
		Verified:    res.Verified,
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
}

// Writer renders documents.
type Writer struct {
	mdConverter *md.Converter
}

// New creates a Writer. Underlined text keeps an inline <u> tag since
// Markdown has no syntax for it.
func New() *Writer {
	converter := md.NewConverter("", true, nil)
	converter.AddRules(md.Rule{
		Filter: []string{"u", "ins"},
		Replacement: func(content string, _ *goquery.Selection, _ *md.Options) *string {
			if strings.TrimSpace(content) == "" {
				return md.String(content)
			}
			return md.String("<u>" + content + "</u>")
		},
	})
	return &Writer{mdConverter: converter}
}

// unwantedSelectors never belong in an export: page chrome and our own
// notices.
var unwantedSelectors = []string{
	"script", "style", "meta", "link", "noscript", "iframe", "svg",
	"button", "[role=\"toolbar\"]", "#toolbar", "[data-docstyler-notice]",
}

// Markdown converts the editor region of src.
func (w *Writer) Markdown(src Source) (string, error) {
	editorHTML, err := src.EditorHTML()
	if err != nil {
		return "", fmt.Errorf("failed to render editor: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(editorHTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	body := doc.Find("body").First()
	for _, selector := range unwantedSelectors {
		body.Find(selector).Remove()
	}
	cleaned, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}

	markdown, err := w.mdConverter.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}
	return postProcessMarkdown(markdown), nil
}

// MarkdownWithFrontmatter prefixes the Markdown export with fm.
func (w *Writer) MarkdownWithFrontmatter(src Source, fm Frontmatter) (string, error) {
	body, err := w.Markdown(src)
	if err != nil {
		return "", err
	}
	yamlBytes, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	return "---\n" + string(yamlBytes) + "---\n\n" + body, nil
}

// WriteMarkdown writes the Markdown export to path, with frontmatter when fm
// is not nil.
func (w *Writer) WriteMarkdown(path string, src Source, fm *Frontmatter) error {
	var (
		content string
		err     error
	)
	if fm != nil {
		content, err = w.MarkdownWithFrontmatter(src, *fm)
	} else {
		content, err = w.Markdown(src)
	}
	if err != nil {
		return err
	}
	return writeFile(path, content)
}

// WriteHTML writes the whole page to path.
func (w *Writer) WriteHTML(path string, src Source) error {
	page, err := src.HTML()
	if err != nil {
		return err
	}
	return writeFile(path, page)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Printf("Wrote %s", path)
	return nil
}

var (
	blankRuns       = regexp.MustCompile(`\n{3,}`)
	frontmatterExpr = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n\n?(.*)$`)
)

func postProcessMarkdown(s string) string {
	s = blankRuns.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}

// ParseFrontmatter splits a Markdown export into its frontmatter and body.
// Content without frontmatter returns nil.
func ParseFrontmatter(content string) (*Frontmatter, string, error) {
	matches := frontmatterExpr.FindStringSubmatch(content)
	if len(matches) != 3 {
		return nil, content, nil
	}
	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(matches[1]), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	return &fm, matches[2], nil
}
