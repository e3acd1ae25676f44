// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web mounts every
// component’s Routes() at its Pattern() and, before mounting, invokes
// Init() when the component implements the Initializer interface.

package component

import (
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Initializer is optional.  If a Component implements it, cmd/web calls
// Init(env) once before mounting its routes.
type Initializer interface {
	Init(Env) error
}

// Component contract.
//
// Routes() should mount BOTH page and API endpoints relative to Pattern(),
// e.g. a component at "/" may register "/" and "/waitlist".
type Component interface {
	Name() string
	Pattern() string
	Routes() chi.Router
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.  A second
// registration under the same name replaces the first.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component sorted by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Mount initialises every registered component with env and mounts it on r.
func Mount(r chi.Router, env Env) error {
	for _, c := range All() {
		if in, ok := c.(Initializer); ok {
			if err := in.Init(env); err != nil {
				return &InitError{Component: c.Name(), Err: err}
			}
		}
		r.Mount(c.Pattern(), c.Routes())
		env.Log.Debugw("component mounted", "component", c.Name(), "pattern", c.Pattern())
	}
	return nil
}

// InitError reports which component failed to initialise.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string { return "component " + e.Component + ": " + e.Err.Error() }
func (e *InitError) Unwrap() error { return e.Err }
