package checker

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownChecker is returned by Registry.New for names with no
// registered factory. The engine treats it as a configuration error and
// aborts before any file is processed.
var ErrUnknownChecker = errors.New("unknown checker")

// Options is the opaque configuration blob attached to a checker in the
// lint configuration document. Each factory interprets its own keys.
type Options map[string]any

// Factory constructs a checker from its configuration options.
type Factory func(opts Options) (Checker, error)

// Registry is the closed name-to-capability mapping resolved at startup.
// Names are static; there is no runtime plugin loading.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry pre-populated with the built-in checkers.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("whitespace", newWhitespace)
	r.Register("json", newJSONFormat)
	r.Register("markdown", newMarkdown)
	r.Register("i18n", newI18n)
	return r
}

// Register adds or replaces a factory under name.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// New resolves name and constructs the checker with opts. Unknown names
// fail with ErrUnknownChecker.
func (r *Registry) New(name string, opts Options) (Checker, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownChecker, name)
	}
	chk, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to configure checker %q: %w", name, err)
	}
	return chk, nil
}

// Names returns the registered checker names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
