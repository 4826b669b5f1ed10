// Package config loads docstyler settings from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/f4ah6o/docstyler-go/internal/document"
	"github.com/f4ah6o/docstyler-go/internal/engine"
	"github.com/f4ah6o/docstyler-go/internal/fingerprint"
	"github.com/f4ah6o/docstyler-go/internal/locator"
	"github.com/f4ah6o/docstyler-go/internal/notify"
	"github.com/f4ah6o/docstyler-go/internal/trigger"
)

// Config represents the structure of docstyler.toml
type Config struct {
	Engine      EngineConfig      `toml:"engine" yaml:"engine"`
	Fingerprint FingerprintConfig `toml:"fingerprint" yaml:"fingerprint"`
	Locator     LocatorConfig     `toml:"locator" yaml:"locator"`
	Trigger     TriggerConfig     `toml:"trigger" yaml:"trigger"`
	Document    DocumentConfig    `toml:"document" yaml:"document"`
	Notify      NotifyConfig      `toml:"notify" yaml:"notify"`
}

type EngineConfig struct {
	MaxIterations  int      `toml:"max_iterations" yaml:"max_iterations"`
	StyleSettle    Duration `toml:"style_settle" yaml:"style_settle"`
	PassSettle     Duration `toml:"pass_settle" yaml:"pass_settle"`
	VerifyDelay    Duration `toml:"verify_delay" yaml:"verify_delay"`
	NormalizeFirst bool     `toml:"normalize_first" yaml:"normalize_first"`
}

type FingerprintConfig struct {
	Before int `toml:"before" yaml:"before"`
	After  int `toml:"after" yaml:"after"`
}

type LocatorConfig struct {
	MatchCase bool `toml:"match_case" yaml:"match_case"`
	WholeWord bool `toml:"whole_word" yaml:"whole_word"`
}

type TriggerConfig struct {
	Strategies []string `toml:"strategies" yaml:"strategies"`
}

type DocumentConfig struct {
	EditorSelectors []string `toml:"editor_selectors" yaml:"editor_selectors"`
	RenderDelay     Duration `toml:"render_delay" yaml:"render_delay"`
	SyntheticKeys   bool     `toml:"synthetic_keys" yaml:"synthetic_keys"`
}

type NotifyConfig struct {
	Quiet      bool     `toml:"quiet" yaml:"quiet"`
	OnDocument bool     `toml:"on_document" yaml:"on_document"`
	Timeout    Duration `toml:"timeout" yaml:"timeout"`
}

// Duration is a time.Duration written as "300ms" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Engine: EngineConfig{
			MaxIterations:  engine.DefaultMaxIterations,
			StyleSettle:    Duration{engine.DefaultStyleSettle},
			PassSettle:     Duration{engine.DefaultPassSettle},
			VerifyDelay:    Duration{engine.DefaultVerifyDelay},
			NormalizeFirst: true,
		},
		Fingerprint: FingerprintConfig{Before: fingerprint.DefaultBefore, After: fingerprint.DefaultAfter},
		Trigger:     TriggerConfig{Strategies: append([]string(nil), trigger.DefaultOrder...)},
		Document: DocumentConfig{
			EditorSelectors: append([]string(nil), document.DefaultEditorSelectors...),
			SyntheticKeys:   true,
		},
		Notify: NotifyConfig{OnDocument: true, Timeout: Duration{notify.DefaultTimeout}},
	}
}

// Load reads path over the defaults. The format follows the extension.
func Load(path string) (Config, error) {
	cfg := Defaults()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Discover returns the first config file that exists: $DOCSTYLER_CONFIG,
// then docstyler.toml or docstyler.yaml in the working directory, then the
// user config directory. It returns "" when there is none.
func Discover() string {
	if p := os.Getenv("DOCSTYLER_CONFIG"); p != "" {
		return p
	}
	candidates := []string{"docstyler.toml", "docstyler.yaml", "docstyler.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(dir, "docstyler", "config.toml"),
			filepath.Join(dir, "docstyler", "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// LoadOrDefault loads path, or the discovered file when path is empty, or
// the defaults when there is nothing to load.
func LoadOrDefault(path string) (Config, error) {
	if path == "" {
		path = Discover()
	}
	if path == "" {
		return Defaults(), nil
	}
	return Load(path)
}

// Validate checks ranges and strategy names.
func (c Config) Validate() error {
	var problems []string
	if c.Engine.MaxIterations < 1 {
		problems = append(problems, "engine.max_iterations must be at least 1")
	}
	for name, d := range map[string]Duration{
		"engine.style_settle":   c.Engine.StyleSettle,
		"engine.pass_settle":    c.Engine.PassSettle,
		"engine.verify_delay":   c.Engine.VerifyDelay,
		"document.render_delay": c.Document.RenderDelay,
		"notify.timeout":        c.Notify.Timeout,
	} {
		if d.Duration < 0 {
			problems = append(problems, name+" must not be negative")
		}
	}
	if c.Fingerprint.Before < 0 || c.Fingerprint.After < 0 {
		problems = append(problems, "fingerprint windows must not be negative")
	}
	if len(c.Trigger.Strategies) == 0 {
		problems = append(problems, "trigger.strategies must not be empty")
	}
	for _, s := range c.Trigger.Strategies {
		if !trigger.Known(s) {
			problems = append(problems, fmt.Sprintf("unknown trigger strategy %q (known: %s)", s, strings.Join(trigger.Names(), ", ")))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.New(strings.Join(problems, "; "))
}

// RunConfig converts to the engine's settings.
func (c Config) RunConfig(sleeper engine.Sleeper, logger *log.Logger) engine.Config {
	return engine.Config{
		MaxIterations: c.Engine.MaxIterations,
		StyleSettle:   c.Engine.StyleSettle.Duration,
		PassSettle:    c.Engine.PassSettle.Duration,
		VerifyDelay:   c.Engine.VerifyDelay.Duration,
		Windows:       fingerprint.Windows{Before: c.Fingerprint.Before, After: c.Fingerprint.After},
		Locator:       locator.Options{MatchCase: c.Locator.MatchCase, WholeWord: c.Locator.WholeWord},
		Sleeper:       sleeper,
		Logger:        logger,
	}
}

// DocumentOptions converts to document loading options.
func (c Config) DocumentOptions(logger *log.Logger) document.Options {
	return document.Options{
		EditorSelectors:     c.Document.EditorSelectors,
		RenderDelay:         c.Document.RenderDelay.Duration,
		IgnoreSyntheticKeys: !c.Document.SyntheticKeys,
		Logger:              logger,
	}
}
