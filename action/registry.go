package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"

	onyesha "github.com/PADAS/gundi-integration-onyesha"
)

// HandlerFunc is a type-erased action handler that decodes
// inv.Config itself.
type HandlerFunc func(ctx context.Context, inv *Invocation) (Result, error)

type entry struct {
	handler HandlerFunc
	opts    Options
}

// Registry maps action ids to type-erased handler functions.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty action registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]entry),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Register adds a typed action definition. The generic handler is wrapped
// in a closure that decodes the invocation config into C before calling
// the typed handler. Registering the same name twice fails with
// onyesha.ErrActionExists.
//
// This is a package-level generic function because Go does not allow
// generic methods on non-generic receiver types.
func Register[C any](r *Registry, def *Definition[C]) error {
	handler := func(ctx context.Context, inv *Invocation) (Result, error) {
		cfg, err := DecodeConfig[C](inv.Config)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", def.Name, err)
		}
		return def.Handler(ctx, inv, cfg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[def.Name]; ok {
		return fmt.Errorf("%w: %q", onyesha.ErrActionExists, def.Name)
	}
	r.entries[def.Name] = entry{handler: handler, opts: def.Opts}
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister[C any](r *Registry, def *Definition[C]) {
	if err := Register(r, def); err != nil {
		panic(err)
	}
}

// DecodeConfig applies C's defaults, overlays raw (JSON, may be empty or
// null) and validates the result.
func DecodeConfig[C any](raw []byte) (C, error) {
	var cfg C
	if isStruct[C]() {
		if err := defaults.Set(&cfg); err != nil {
			return cfg, fmt.Errorf("%w: defaults: %v", onyesha.ErrInvalidActionConfig, err)
		}
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("%w: decode: %v", onyesha.ErrInvalidActionConfig, err)
		}
	}

	if isStruct[C]() {
		if err := validate.Struct(cfg); err != nil {
			return cfg, fmt.Errorf("%w: %v", onyesha.ErrInvalidActionConfig, err)
		}
	}
	return cfg, nil
}

func isStruct[C any]() bool {
	t := reflect.TypeFor[C]()
	return t.Kind() == reflect.Struct
}

// Get returns the handler for the given action id.
func (r *Registry) Get(name string) (HandlerFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.handler, ok
}

// Options returns the options the action was registered with.
func (r *Registry) Options(name string) (Options, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.opts, ok
}

// Names returns all registered action ids, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
