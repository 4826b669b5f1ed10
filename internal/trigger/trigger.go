// Package trigger invokes formatting toggles through whatever indirect
// mechanism the host offers. Mechanisms are strategies tried in priority
// order; none of them can confirm that the toggle actually rendered.
package trigger

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

// Strategy is one way of activating a formatting toggle. Attempt reports
// whether the host accepted the activation, not whether it took effect.
type Strategy interface {
	Describe() string
	Attempt(ctx context.Context, style host.Style) bool
}

// Env is what a strategy is built against.
type Env struct {
	Doc    host.Controls
	Logger *log.Logger
}

// Factory builds a strategy for env.
type Factory func(env Env) Strategy

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{
		"toolbar":  func(env Env) Strategy { return &Toolbar{doc: env.Doc, logger: env.Logger, Buttons: DefaultButtons} },
		"shortcut": func(env Env) Strategy { return &Shortcut{doc: env.Doc, logger: env.Logger, Targets: DefaultFocusTargets} },
		"exec":     func(env Env) Strategy { return &Exec{doc: env.Doc, logger: env.Logger} },
	}
)

// DefaultOrder is the strategy order used when none is configured.
var DefaultOrder = []string{"toolbar", "shortcut", "exec"}

// Register adds or replaces a named strategy.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Known reports whether name is a registered strategy.
func Known(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// Names lists the registered strategies alphabetically.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Trigger tries its strategies in order until one is accepted.
type Trigger struct {
	strategies []Strategy
	logger     *log.Logger
}

// New creates a Trigger over an explicit strategy list.
func New(logger *log.Logger, strategies ...Strategy) *Trigger {
	if logger == nil {
		logger = log.Default()
	}
	return &Trigger{strategies: strategies, logger: logger}
}

// Build creates a Trigger from registered strategy names.
func Build(names []string, env Env) (*Trigger, error) {
	if len(names) == 0 {
		names = DefaultOrder
	}
	if env.Logger == nil {
		env.Logger = log.Default()
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	strategies := make([]Strategy, 0, len(names))
	for _, n := range names {
		f, ok := registry[strings.TrimSpace(n)]
		if !ok {
			return nil, fmt.Errorf("unknown trigger strategy %q", n)
		}
		strategies = append(strategies, f(env))
	}
	return New(env.Logger, strategies...), nil
}

// Strategies describes the configured strategies in order.
func (t *Trigger) Strategies() []string {
	out := make([]string, len(t.strategies))
	for i, s := range t.strategies {
		out[i] = s.Describe()
	}
	return out
}

// Fire activates style with the first strategy that is accepted and returns
// its description.
func (t *Trigger) Fire(ctx context.Context, style host.Style) (string, error) {
	for _, s := range t.strategies {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if s.Attempt(ctx, style) {
			return s.Describe(), nil
		}
	}
	return "", fmt.Errorf("%w: %s (tried %s)", host.ErrTriggerUnavailable, style, strings.Join(t.Strategies(), ", "))
}
