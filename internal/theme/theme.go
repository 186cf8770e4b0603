// Package theme maps symbolic theme names to fixed bundles of
// color-adjustment overrides applied ahead of user transform parameters.
package theme

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"sync"
)

// ErrUnknownTheme is returned by Resolve for unregistered theme names.
// Callers decide whether to fall back to the default theme or propagate.
var ErrUnknownTheme = errors.New("unknown theme")

// Override is the parameter bundle one theme contributes to a render.
// ContrastDelta and SaturationDelta are added to the caller's multipliers;
// the tint, when TintIntensity > 0, runs as a tint step before any
// caller-supplied tint.
type Override struct {
	TintColor       color.NRGBA
	TintIntensity   float64 // 0..1; 0 disables the tint
	ContrastDelta   float64
	SaturationDelta float64
}

// IsZero reports whether the override changes nothing.
func (o Override) IsZero() bool {
	return o.TintIntensity == 0 && o.ContrastDelta == 0 && o.SaturationDelta == 0
}

// Built-in themes.
var builtins = map[string]Override{
	"default": {},
	"light": {
		TintColor:       color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		TintIntensity:   0.08,
		ContrastDelta:   0.05,
		SaturationDelta: 0.05,
	},
	"dark": {
		TintColor:       color.NRGBA{R: 24, G: 26, B: 32, A: 255},
		TintIntensity:   0.12,
		ContrastDelta:   -0.10,
		SaturationDelta: -0.15,
	},
}

// Registry resolves theme names to overrides. The built-in set is closed;
// operators extend it through Register.
type Registry struct {
	mu     sync.RWMutex
	custom map[string]Override
}

// NewRegistry returns a registry seeded with the built-in themes.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string]Override)}
}

// Register adds a custom theme. Built-in names cannot be redefined and an
// override with an out-of-range tint intensity is rejected.
func (r *Registry) Register(name string, ov Override) error {
	if name == "" {
		return errors.New("theme name must not be empty")
	}
	if _, ok := builtins[name]; ok {
		return fmt.Errorf("theme %q is built-in and cannot be redefined", name)
	}
	if ov.TintIntensity < 0 || ov.TintIntensity > 1 {
		return fmt.Errorf("theme %q: tint intensity %g outside [0, 1]", name, ov.TintIntensity)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.custom[name]; ok {
		return fmt.Errorf("theme %q already registered", name)
	}
	r.custom[name] = ov
	return nil
}

// Resolve returns the override for name. The empty name resolves to the
// identity override.
func (r *Registry) Resolve(name string) (Override, error) {
	if name == "" {
		return Override{}, nil
	}
	if ov, ok := builtins[name]; ok {
		return ov, nil
	}

	r.mu.RLock()
	ov, ok := r.custom[name]
	r.mu.RUnlock()
	if !ok {
		return Override{}, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	return ov, nil
}

// Names returns all registered theme names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(builtins)+len(r.custom))
	for n := range builtins {
		names = append(names, n)
	}
	for n := range r.custom {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
