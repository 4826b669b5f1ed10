package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/f4ah6o/docstyler-go/internal/engine"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults().Validate() error: %v", err)
	}
	if cfg.Engine.MaxIterations != 200 || cfg.Fingerprint.Before != 10 || cfg.Fingerprint.After != 20 {
		t.Errorf("Defaults() = %+v", cfg)
	}
	if !cfg.Engine.NormalizeFirst || cfg.Locator.MatchCase {
		t.Errorf("Defaults() engine/locator = %+v %+v", cfg.Engine, cfg.Locator)
	}
	if !reflect.DeepEqual(cfg.Trigger.Strategies, []string{"toolbar", "shortcut", "exec"}) {
		t.Errorf("Defaults() strategies = %v", cfg.Trigger.Strategies)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "docstyler.toml", `
[engine]
max_iterations = 50
style_settle = "10ms"
normalize_first = false

[locator]
match_case = true

[trigger]
strategies = ["exec"]

[document]
render_delay = "1.5s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.MaxIterations != 50 || cfg.Engine.StyleSettle.Duration != 10*time.Millisecond {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Engine.NormalizeFirst {
		t.Error("normalize_first = true, want false")
	}
	if cfg.Engine.PassSettle.Duration != engine.DefaultPassSettle {
		t.Errorf("pass_settle = %v, want the default", cfg.Engine.PassSettle)
	}
	if !cfg.Locator.MatchCase || !reflect.DeepEqual(cfg.Trigger.Strategies, []string{"exec"}) {
		t.Errorf("locator/trigger = %+v %+v", cfg.Locator, cfg.Trigger)
	}
	if cfg.Document.RenderDelay.Duration != 1500*time.Millisecond {
		t.Errorf("render_delay = %v", cfg.Document.RenderDelay)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "docstyler.yaml", `
engine:
  max_iterations: 7
  verify_delay: 0s
fingerprint:
  before: 4
  after: 8
notify:
  quiet: true
  timeout: 250ms
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Engine.MaxIterations != 7 || cfg.Engine.VerifyDelay.Duration != 0 {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Fingerprint != (FingerprintConfig{Before: 4, After: 8}) {
		t.Errorf("fingerprint = %+v", cfg.Fingerprint)
	}
	if !cfg.Notify.Quiet || cfg.Notify.Timeout.Duration != 250*time.Millisecond || !cfg.Notify.OnDocument {
		t.Errorf("notify = %+v", cfg.Notify)
	}
}

func TestLoad_EmptyYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yml", ""))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unsupported extension", "config.json", `{}`, "unsupported config format"},
		{"unknown toml key", "c.toml", "[engine]\nmax_iterationz = 3\n", "unknown keys"},
		{"unknown yaml key", "c.yaml", "engine:\n  speed: 3\n", "failed to parse"},
		{"bad duration", "c.toml", "[engine]\nstyle_settle = \"soon\"\n", "failed to parse"},
		{"zero cap", "c.toml", "[engine]\nmax_iterations = 0\n", "max_iterations must be at least 1"},
		{"unknown strategy", "c.yaml", "trigger:\n  strategies: [toolbar, psychic]\n", `unknown trigger strategy "psychic"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative delay", func(c *Config) { c.Engine.PassSettle.Duration = -time.Second }, "engine.pass_settle must not be negative"},
		{"negative window", func(c *Config) { c.Fingerprint.After = -1 }, "fingerprint windows"},
		{"no strategies", func(c *Config) { c.Trigger.Strategies = nil }, "must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DOCSTYLER_CONFIG", "")

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Errorf("LoadOrDefault() = %+v, want defaults", cfg)
	}

	path := writeFile(t, "env.toml", "[engine]\nmax_iterations = 3\n")
	t.Setenv("DOCSTYLER_CONFIG", path)
	if got := Discover(); got != path {
		t.Errorf("Discover() = %q, want %q", got, path)
	}
	cfg, err = LoadOrDefault("")
	if err != nil || cfg.Engine.MaxIterations != 3 {
		t.Errorf("LoadOrDefault() = %+v, %v", cfg.Engine, err)
	}
}

func TestConversions(t *testing.T) {
	cfg := Defaults()
	cfg.Locator.WholeWord = true
	cfg.Document.SyntheticKeys = false

	ec := cfg.RunConfig(nil, nil)
	if ec.MaxIterations != 200 || ec.StyleSettle != engine.DefaultStyleSettle || !ec.Locator.WholeWord || ec.Windows.After != 20 {
		t.Errorf("RunConfig() = %+v", ec)
	}
	do := cfg.DocumentOptions(nil)
	if !do.IgnoreSyntheticKeys || len(do.EditorSelectors) == 0 {
		t.Errorf("DocumentOptions() = %+v", do)
	}
}
